package normalize

import (
	"math"
	"sort"
)

// quantile returns the q-th quantile (0..1) of values using linear
// interpolation between order statistics, the same interpolation the
// historical analysis tool used. gonum's Quantile interpolates over a
// different CDF convention and would shift the published thresholds,
// so this one stays local.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
