package geo

import (
	"time"

	"github.com/ridemetrics/severity.report/internal/monitoring"
)

// FillPolicy selects how missing seconds are reconstructed. The two
// policies are deliberately different contracts, not versions of one:
// Uniform bridges every gap under its tolerance, Segmented refuses to
// bridge large gaps at all and treats them as track boundaries.
type FillPolicy string

const (
	// FillUniform interpolates across any gap of up to 60 seconds and
	// leaves larger gaps open. Cheap, adequate when logging is steady.
	FillUniform FillPolicy = "uniform"

	// FillSegmented splits the series at gaps over 180 seconds and
	// interpolates only inside the resulting segments. Needed when the
	// platform stops and restarts logging: a straight line across a
	// parking lot is not a trajectory.
	FillSegmented FillPolicy = "segmented"
)

const (
	// UniformGapTolerance is the largest gap (in missing seconds plus
	// one) the uniform policy will bridge.
	UniformGapTolerance = 60

	// SegmentGapTolerance is the index distance between observed fixes
	// beyond which the segmented policy declares a track boundary.
	SegmentGapTolerance = 180
)

// FillGaps reconstructs a per-second-dense fix sequence from a sparse,
// time-ordered one under the given policy. An empty input produces an
// empty output with a warning; it is not an error.
func FillGaps(fixes []Fix, policy FillPolicy) []Fix {
	if len(fixes) == 0 {
		monitoring.Warnf("gap fill: no fixes to process")
		return nil
	}
	if policy == FillSegmented {
		return fillSegmented(fixes)
	}
	return fillUniform(fixes)
}

// fillUniform walks consecutive pairs and linearly interpolates the
// interior seconds of every gap of 1..UniformGapTolerance missing
// seconds. Larger gaps are passed through unfilled.
func fillUniform(fixes []Fix) []Fix {
	out := make([]Fix, 0, len(fixes))
	added := 0

	for i := range fixes {
		out = append(out, fixes[i])
		if i == len(fixes)-1 {
			continue
		}

		cur := fixes[i]
		next := fixes[i+1]
		gap := next.EpochSeconds - cur.EpochSeconds - 1
		if gap <= 0 || gap > UniformGapTolerance {
			continue
		}

		latStep := (next.Lat - cur.Lat) / float64(gap+1)
		lonStep := (next.Lon - cur.Lon) / float64(gap+1)
		for j := int64(1); j <= gap; j++ {
			out = append(out, Fix{
				EpochSeconds: cur.EpochSeconds + j,
				Time:         cur.Time.Add(time.Duration(j) * time.Second),
				Lat:          cur.Lat + latStep*float64(j),
				Lon:          cur.Lon + lonStep*float64(j),
				Interpolated: true,
			})
			added++
		}
	}

	monitoring.Logf("gap fill (uniform): added %d interpolated points for gaps up to %ds", added, UniformGapTolerance)
	return out
}

// fillSegmented builds the complete integer-second index from the first
// to the last observed epoch, splits it into segments wherever two
// consecutive observed fixes sit more than SegmentGapTolerance indices
// apart, and densifies each segment independently. Seconds inside a
// boundary gap get no synthetic points. Timestamps within a segment are
// reconstructed from the segment's first known timestamp plus offset.
func fillSegmented(fixes []Fix) []Fix {
	if len(fixes) < 2 {
		// not enough observations for gap detection; the series is its
		// own single segment and there is nothing to interpolate
		monitoring.Warnf("gap fill (segmented): %d fixes, insufficient data for gap detection", len(fixes))
		out := make([]Fix, len(fixes))
		copy(out, fixes)
		return out
	}

	var out []Fix
	segments := 0
	segStart := 0
	for i := 1; i <= len(fixes); i++ {
		if i < len(fixes) && fixes[i].EpochSeconds-fixes[i-1].EpochSeconds <= SegmentGapTolerance {
			continue
		}
		out = append(out, densifySegment(fixes[segStart:i])...)
		segments++
		segStart = i
	}

	monitoring.Logf("gap fill (segmented): %d track segments, boundaries at gaps over %ds", segments, SegmentGapTolerance)
	return out
}

// densifySegment emits one fix per integer second from the segment's
// first to last observed epoch, interpolating between each observed pair.
func densifySegment(seg []Fix) []Fix {
	if len(seg) == 1 {
		return []Fix{seg[0]}
	}

	anchorEpoch := seg[0].EpochSeconds
	anchorTime := seg[0].Time

	span := seg[len(seg)-1].EpochSeconds - anchorEpoch + 1
	out := make([]Fix, 0, span)
	for i := 0; i < len(seg)-1; i++ {
		cur := seg[i]
		next := seg[i+1]
		out = append(out, cur)

		gap := next.EpochSeconds - cur.EpochSeconds - 1
		if gap <= 0 {
			continue
		}
		latStep := (next.Lat - cur.Lat) / float64(gap+1)
		lonStep := (next.Lon - cur.Lon) / float64(gap+1)
		for j := int64(1); j <= gap; j++ {
			epoch := cur.EpochSeconds + j
			out = append(out, Fix{
				EpochSeconds: epoch,
				Time:         anchorTime.Add(time.Duration(epoch-anchorEpoch) * time.Second),
				Lat:          cur.Lat + latStep*float64(j),
				Lon:          cur.Lon + lonStep*float64(j),
				Interpolated: true,
			})
		}
	}
	out = append(out, seg[len(seg)-1])
	return out
}
