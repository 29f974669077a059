package normalize

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesFrom(scores ...float64) []Record {
	base := time.Date(2025, 3, 23, 15, 0, 0, 0, time.UTC)
	records := make([]Record, len(scores))
	for i, s := range scores {
		ts := base.Add(time.Duration(i) * time.Second)
		records[i] = Record{EpochSeconds: ts.Unix(), Time: ts, SeverityScore: s}
	}
	return records
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		q        float64
		expected float64
	}{
		{"median of odd set", []float64{1, 2, 3}, 0.5, 2},
		{"median interpolates", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p99 of four values", []float64{1, 2, 3, 4}, 0.99, 3.97},
		{"p100 is max", []float64{1, 2, 3, 4}, 1, 4},
		{"p0 is min", []float64{4, 3, 2, 1}, 0, 1},
		{"q1 of five values", []float64{1, 2, 3, 4, 100}, 0.25, 2},
		{"q3 of five values", []float64{1, 2, 3, 4, 100}, 0.75, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quantile(tt.values, tt.q)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestQuantileEmpty(t *testing.T) {
	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
}

func TestDetectOutliersBeforeLoad(t *testing.T) {
	n := New()
	_, err := n.DetectOutliers(OutlierIQR)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDetectOutliersUnknownMethod(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3))
	_, err := n.DetectOutliers("median-of-medians")

	var ume *UnknownMethodError
	require.True(t, errors.As(err, &ume))
	assert.Equal(t, "outlier", ume.Kind)
}

func TestDetectOutliersIQR(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3, 4, 100))

	flags, err := n.DetectOutliers(OutlierIQR)
	require.NoError(t, err)

	// Q1=2, Q3=4, IQR=2, upper bound 7: only 100 is out
	assert.Equal(t, []bool{false, false, false, false, true}, flags)
}

func TestDetectOutliersZScore(t *testing.T) {
	n := New()
	// tight cluster plus one extreme point
	scores := make([]float64, 0, 40)
	for i := 0; i < 39; i++ {
		scores = append(scores, 10)
	}
	scores = append(scores, 1000)
	n.Load(seriesFrom(scores...))

	flags, err := n.DetectOutliers(OutlierZScore)
	require.NoError(t, err)

	flagged := 0
	for _, f := range flags {
		if f {
			flagged++
		}
	}
	assert.Equal(t, 1, flagged)
	assert.True(t, flags[39])
}

func TestDetectOutliersZScoreConstantSeries(t *testing.T) {
	n := New()
	n.Load(seriesFrom(5, 5, 5, 5, 5))

	// Zero std: nothing is an outlier, and no NaN sneaks in.
	flags, err := n.DetectOutliers(OutlierZScore)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false, false}, flags)

	max, err := n.ScientificMax(MaxPercentile, DefaultPercentile)
	require.NoError(t, err)
	assert.Equal(t, 5.0, max)
}

func TestScientificMaxRequiresDetection(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3))
	_, err := n.ScientificMax(MaxPercentile, DefaultPercentile)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestScientificMaxPercentile(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3, 4, 100))
	_, err := n.DetectOutliers(OutlierIQR)
	require.NoError(t, err)

	max, err := n.ScientificMax(MaxPercentile, 99)
	require.NoError(t, err)
	assert.InDelta(t, 3.97, max, 1e-9)

	// p100 of the cleaned series is its max
	max, err = n.ScientificMax(MaxPercentile, 100)
	require.NoError(t, err)
	assert.Equal(t, 4.0, max)
}

func TestScientificMaxIQRAboveQ3(t *testing.T) {
	n := New()
	n.Load(seriesFrom(3, 7, 1, 9, 4, 6, 2, 8, 5))
	_, err := n.DetectOutliers(OutlierIQR)
	require.NoError(t, err)

	max, err := n.ScientificMax(MaxIQR, 0)
	require.NoError(t, err)

	q3 := quantile([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 0.75)
	assert.GreaterOrEqual(t, max, q3)
}

func TestScientificMaxUnknownMethod(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3))
	_, err := n.DetectOutliers(OutlierIQR)
	require.NoError(t, err)

	_, err = n.ScientificMax("mode", 99)
	var ume *UnknownMethodError
	assert.True(t, errors.As(err, &ume))
}

func TestPercentageScoresClip(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3, 4, 100))

	res, err := n.RobustMax(OutlierIQR, MaxPercentile, DefaultPercentile)
	require.NoError(t, err)

	assert.InDelta(t, 3.97, res.ScientificMax, 1e-9)
	assert.Equal(t, 1, res.OutliersRemoved)
	for _, p := range res.PercentageScores {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
	// the outlier exceeds the ceiling and clips at exactly 100
	assert.Equal(t, 100.0, res.PercentageScores[4])
}

func TestCompareMethodsCoversAllCombinations(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3, 4, 5, 6, 7, 8, 9, 50))

	results, err := n.CompareMethods(DefaultPercentile)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, key := range []string{"IQR_percentile", "IQR_iqr", "Z-Score_percentile", "Z-Score_iqr"} {
		res, ok := results[key]
		require.True(t, ok, "missing combination %s", key)
		assert.Len(t, res.PercentageScores, 10)
	}
}

func TestStatsSummary(t *testing.T) {
	n := New()
	n.Load(seriesFrom(2, 4, 6, 8))

	s := n.Stats()
	assert.Equal(t, 4, s.TotalPoints)
	assert.Equal(t, 2.0, s.RawMin)
	assert.Equal(t, 8.0, s.RawMax)
	assert.Equal(t, 5.0, s.RawMean)
	// records are one second apart
	assert.InDelta(t, 1.0, s.SamplingRateHz, 1e-9)
	assert.NotEmpty(t, s.Distribution.Type)
}

func TestLoadResetsOutlierState(t *testing.T) {
	n := New()
	n.Load(seriesFrom(1, 2, 3))
	_, err := n.DetectOutliers(OutlierIQR)
	require.NoError(t, err)

	n.Load(seriesFrom(4, 5, 6))
	_, err = n.ScientificMax(MaxPercentile, 99)
	assert.ErrorIs(t, err, ErrNoData)
}
