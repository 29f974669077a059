package vibration

import (
	"math"
	"sort"
	"time"
)

// SecondBucket holds the vibration statistics for one wall-clock second.
type SecondBucket struct {
	Second       time.Time
	EpochSeconds int64

	VibrationMean float64
	VibrationMax  float64
	VibrationStd  float64

	DispXMean float64
	DispXMax  float64
	DispYMean float64
	DispYMax  float64
	DispZMean float64
	DispZMax  float64

	// TemperatureMean averages only the samples that carried a reading.
	// NaN when no sample in the bucket had one.
	TemperatureMean float64

	SampleCount int
}

// singleSampleStdFraction replaces the undefined standard deviation of a
// one-sample bucket. Documented policy: 1% of the bucket mean, so the
// downstream variability factor stays finite. Not a statistical estimate.
const singleSampleStdFraction = 0.01

// AggregateBySecond groups samples into one-second buckets and computes
// the per-bucket statistics. Buckets are returned in ascending time
// order, one per distinct second present in the input.
func AggregateBySecond(samples []RawSample) ([]SecondBucket, error) {
	if len(samples) == 0 {
		return nil, &DataError{Msg: "no samples to aggregate"}
	}

	groups := make(map[int64][]RawSample)
	for _, s := range samples {
		sec := s.Time.Unix()
		groups[sec] = append(groups[sec], s)
	}

	seconds := make([]int64, 0, len(groups))
	for sec := range groups {
		seconds = append(seconds, sec)
	}
	sort.Slice(seconds, func(i, j int) bool { return seconds[i] < seconds[j] })

	buckets := make([]SecondBucket, 0, len(seconds))
	for _, sec := range seconds {
		buckets = append(buckets, aggregateGroup(sec, groups[sec]))
	}
	return buckets, nil
}

func aggregateGroup(sec int64, group []RawSample) SecondBucket {
	b := SecondBucket{
		Second:       time.Unix(sec, 0).UTC(),
		EpochSeconds: sec,
		SampleCount:  len(group),
		VibrationMax: math.Inf(-1),
		DispXMax:     math.Inf(-1),
		DispYMax:     math.Inf(-1),
		DispZMax:     math.Inf(-1),
	}

	levels := make([]float64, len(group))
	tempSum := 0.0
	tempN := 0
	for i, s := range group {
		lv := s.VibrationLevel()
		levels[i] = lv
		b.VibrationMean += lv
		if lv > b.VibrationMax {
			b.VibrationMax = lv
		}
		b.DispXMean += s.DispX
		b.DispYMean += s.DispY
		b.DispZMean += s.DispZ
		if s.DispX > b.DispXMax {
			b.DispXMax = s.DispX
		}
		if s.DispY > b.DispYMax {
			b.DispYMax = s.DispY
		}
		if s.DispZ > b.DispZMax {
			b.DispZMax = s.DispZ
		}
		if s.Temperature != nil {
			tempSum += *s.Temperature
			tempN++
		}
	}

	n := float64(len(group))
	b.VibrationMean /= n
	b.DispXMean /= n
	b.DispYMean /= n
	b.DispZMean /= n

	if tempN > 0 {
		b.TemperatureMean = tempSum / float64(tempN)
	} else {
		b.TemperatureMean = math.NaN()
	}

	if len(group) == 1 {
		// std is undefined for a single sample
		b.VibrationStd = b.VibrationMean * singleSampleStdFraction
	} else {
		var ss float64
		for _, lv := range levels {
			d := lv - b.VibrationMean
			ss += d * d
		}
		b.VibrationStd = math.Sqrt(ss / (n - 1))
	}

	return b
}
