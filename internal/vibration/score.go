package vibration

import "time"

// SeverityRecord is the scored output for one second. It is keyed by
// epoch second and upserted idempotently, so re-running an analysis
// overwrites rather than duplicates.
type SeverityRecord struct {
	EpochSeconds     int64
	Second           time.Time
	VelocityScore    float64
	MeanDisplacement float64
	SeverityScore    float64
}

// VelocityScore combines the bucket's mean, max and standard deviation
// into a single velocity-based intensity figure:
//
//	mean × (1 + peak_factor) × (1 + variability_factor)
//
// where peak_factor gives half weight to how far the max exceeds the
// mean and variability_factor is the relative standard deviation.
//
// A zero mean would divide by zero, so that case short-circuits: the
// score is 0 when max and std are both 0, otherwise max + std.
func VelocityScore(mean, max, std float64) float64 {
	if mean == 0 {
		if max == 0 && std == 0 {
			return 0
		}
		return max + std
	}

	peakFactor := 0.0
	if max > mean {
		peakFactor = (max/mean - 1) * 0.5
	}
	variabilityFactor := std / mean

	return mean * (1 + peakFactor) * (1 + variabilityFactor)
}

// SeverityScore extends VelocityScore with a displacement factor: the
// mean displacement across the three axes, normalized by the velocity
// mean and given half weight. The zero-mean branch behaves exactly as
// in VelocityScore (displacement does not contribute there).
func SeverityScore(mean, max, std, dispXMean, dispYMean, dispZMean float64) float64 {
	if mean == 0 {
		return VelocityScore(mean, max, std)
	}

	meanDisplacement := (dispXMean + dispYMean + dispZMean) / 3
	displacementFactor := (meanDisplacement / mean) * 0.5

	return VelocityScore(mean, max, std) * (1 + displacementFactor)
}

// ScoreBucket derives the per-second severity record from a bucket.
func ScoreBucket(b SecondBucket) SeverityRecord {
	return SeverityRecord{
		EpochSeconds:     b.EpochSeconds,
		Second:           b.Second,
		VelocityScore:    VelocityScore(b.VibrationMean, b.VibrationMax, b.VibrationStd),
		MeanDisplacement: (b.DispXMean + b.DispYMean + b.DispZMean) / 3,
		SeverityScore: SeverityScore(
			b.VibrationMean, b.VibrationMax, b.VibrationStd,
			b.DispXMean, b.DispYMean, b.DispZMean,
		),
	}
}

// ScoreBuckets scores a whole aggregation pass in order.
func ScoreBuckets(buckets []SecondBucket) []SeverityRecord {
	records := make([]SeverityRecord, len(buckets))
	for i, b := range buckets {
		records[i] = ScoreBucket(b)
	}
	return records
}
