// Package normalize rescales a raw severity series onto a bounded
// 0-100 percentage using an outlier-resistant ceiling.
package normalize

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ridemetrics/severity.report/internal/monitoring"
)

// Record is one severity observation joined with its timestamp. The
// timestamp feeds the sampling-rate estimate only; the normalization
// math runs on SeverityScore alone.
type Record struct {
	EpochSeconds  int64
	Time          time.Time
	SeverityScore float64
}

// OutlierMethod selects how outliers are flagged before the ceiling is
// computed.
type OutlierMethod string

// MaxMethod selects how the scientific maximum is derived from the
// cleaned series.
type MaxMethod string

const (
	OutlierIQR    OutlierMethod = "IQR"
	OutlierZScore OutlierMethod = "Z-Score"

	MaxPercentile MaxMethod = "percentile"
	MaxIQR        MaxMethod = "iqr"

	// DefaultPercentile is the percentile used when none is given.
	DefaultPercentile = 99.0
)

// ErrNoData is returned when a computation is requested before a series
// has been loaded, or before outliers have been detected.
var ErrNoData = fmt.Errorf("normalize: no data loaded")

// UnknownMethodError reports a method name outside the supported set.
type UnknownMethodError struct {
	Kind string
	Name string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("normalize: unknown %s method %q", e.Kind, e.Name)
}

// Distribution is a coarse classification of the severity distribution,
// reported for operator context when a series loads.
type Distribution struct {
	Type     string
	Skewness float64
	Kurtosis float64
}

// SeriesStats summarizes a loaded severity series.
type SeriesStats struct {
	TotalPoints    int
	SamplingRateHz float64
	RawMax         float64
	RawMin         float64
	RawMean        float64
	RawStd         float64
	Distribution   Distribution
}

// Result is one full normalization pass: the ceiling, the per-record
// outlier flags, and the per-record percentages. Percentages cover the
// full series, outliers included; the ceiling comes from the cleaned
// series, so outliers simply clip at 100.
type Result struct {
	ScientificMax    float64
	Outliers         []bool
	OutliersRemoved  int
	PercentageScores []float64
}

// Normalizer detects outliers in a severity series, computes a robust
// ceiling, and rescales the series to percentages. Not safe for
// concurrent use; each batch pass owns its own instance.
type Normalizer struct {
	records []Record
	scores  []float64
	stats   SeriesStats

	outliers []bool
	cleaned  []float64
}

// New returns an empty Normalizer; call Load before anything else.
func New() *Normalizer {
	return &Normalizer{}
}

// Load installs the full ordered severity series and computes its
// summary statistics. Any previous outlier state is discarded.
func (n *Normalizer) Load(records []Record) {
	n.records = records
	n.scores = make([]float64, len(records))
	for i, r := range records {
		n.scores[i] = r.SeverityScore
	}
	n.outliers = nil
	n.cleaned = nil
	n.stats = summarize(records, n.scores)

	monitoring.Logf("normalize: loaded %d points, sampling %.2f Hz, raw range [%.2f, %.2f], distribution %s",
		n.stats.TotalPoints, n.stats.SamplingRateHz, n.stats.RawMin, n.stats.RawMax, n.stats.Distribution.Type)
}

// Stats returns the summary computed at load time.
func (n *Normalizer) Stats() SeriesStats {
	return n.stats
}

func summarize(records []Record, scores []float64) SeriesStats {
	s := SeriesStats{TotalPoints: len(records)}
	if len(scores) == 0 {
		return s
	}

	s.RawMin = scores[0]
	s.RawMax = scores[0]
	for _, v := range scores {
		if v < s.RawMin {
			s.RawMin = v
		}
		if v > s.RawMax {
			s.RawMax = v
		}
	}
	s.RawMean = stat.Mean(scores, nil)
	s.RawStd = stat.StdDev(scores, nil)

	if len(records) >= 2 {
		var sum float64
		for i := 1; i < len(records); i++ {
			sum += records[i].Time.Sub(records[i-1].Time).Seconds()
		}
		if meanDiff := sum / float64(len(records)-1); meanDiff > 0 {
			s.SamplingRateHz = 1 / meanDiff
		}
	}

	skew := stat.Skew(scores, nil)
	kurt := stat.ExKurtosis(scores, nil)
	typ := "right_skewed"
	switch {
	case abs(skew) < 0.5 && abs(kurt) < 1:
		typ = "normal"
	case skew < 0:
		typ = "left_skewed"
	}
	s.Distribution = Distribution{Type: typ, Skewness: skew, Kurtosis: kurt}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// DetectOutliers flags records by the chosen method and retains the
// cleaned (non-flagged) series for the ceiling computation. Returns the
// per-record flags in input order.
func (n *Normalizer) DetectOutliers(method OutlierMethod) ([]bool, error) {
	if len(n.scores) == 0 {
		return nil, ErrNoData
	}

	flags := make([]bool, len(n.scores))
	switch method {
	case OutlierIQR:
		q1 := quantile(n.scores, 0.25)
		q3 := quantile(n.scores, 0.75)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr
		for i, v := range n.scores {
			flags[i] = v < lower || v > upper
		}
		monitoring.Logf("normalize: IQR bounds [%.2f, %.2f]", lower, upper)

	case OutlierZScore:
		mean := stat.Mean(n.scores, nil)
		std := stat.StdDev(n.scores, nil)
		for i, v := range n.scores {
			if std > 0 && abs((v-mean)/std) > 3 {
				flags[i] = true
			}
		}

	default:
		return nil, &UnknownMethodError{Kind: "outlier", Name: string(method)}
	}

	cleaned := make([]float64, 0, len(n.scores))
	flagged := 0
	for i, v := range n.scores {
		if flags[i] {
			flagged++
			continue
		}
		cleaned = append(cleaned, v)
	}
	n.outliers = flags
	n.cleaned = cleaned

	monitoring.Logf("normalize: %s flagged %d of %d points", method, flagged, len(n.scores))
	return flags, nil
}

// ScientificMax computes the robust ceiling over the cleaned series.
// DetectOutliers must have run first. percentile is only consulted by
// the percentile method (pass DefaultPercentile for the standard run).
func (n *Normalizer) ScientificMax(method MaxMethod, percentile float64) (float64, error) {
	if n.cleaned == nil {
		return 0, ErrNoData
	}

	switch method {
	case MaxPercentile:
		return quantile(n.cleaned, percentile/100), nil
	case MaxIQR:
		q1 := quantile(n.cleaned, 0.25)
		q3 := quantile(n.cleaned, 0.75)
		return q3 + 1.5*(q3-q1), nil
	default:
		return 0, &UnknownMethodError{Kind: "max", Name: string(method)}
	}
}

// PercentageScores rescales every record, outliers included, against
// the given ceiling and clips to [0,100].
func (n *Normalizer) PercentageScores(scientificMax float64) ([]float64, error) {
	if len(n.scores) == 0 {
		return nil, ErrNoData
	}

	out := make([]float64, len(n.scores))
	for i, v := range n.scores {
		p := v / scientificMax * 100
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		out[i] = p
	}
	return out, nil
}

// RobustMax runs the whole workflow: outlier detection, ceiling, and
// percentage scores. This is the entry point the map-rendering side
// uses, with OutlierIQR, MaxPercentile and DefaultPercentile.
func (n *Normalizer) RobustMax(outlierMethod OutlierMethod, maxMethod MaxMethod, percentile float64) (Result, error) {
	flags, err := n.DetectOutliers(outlierMethod)
	if err != nil {
		return Result{}, err
	}
	max, err := n.ScientificMax(maxMethod, percentile)
	if err != nil {
		return Result{}, err
	}
	scores, err := n.PercentageScores(max)
	if err != nil {
		return Result{}, err
	}

	removed := 0
	for _, f := range flags {
		if f {
			removed++
		}
	}
	return Result{
		ScientificMax:    max,
		Outliers:         flags,
		OutliersRemoved:  removed,
		PercentageScores: scores,
	}, nil
}

// CompareMethods evaluates every outlier/max method combination against
// the loaded series, keyed "<outlier>_<max>". Used by the comparison
// report.
func (n *Normalizer) CompareMethods(percentile float64) (map[string]Result, error) {
	if len(n.scores) == 0 {
		return nil, ErrNoData
	}

	results := make(map[string]Result, 4)
	for _, om := range []OutlierMethod{OutlierIQR, OutlierZScore} {
		for _, mm := range []MaxMethod{MaxPercentile, MaxIQR} {
			res, err := n.RobustMax(om, mm, percentile)
			if err != nil {
				return nil, err
			}
			results[fmt.Sprintf("%s_%s", om, mm)] = res
		}
	}
	return results, nil
}

// Records returns the loaded series in input order.
func (n *Normalizer) Records() []Record {
	return n.records
}
