// Package report renders analysis output: interactive HTML comparison
// charts and static PNG plots of the severity series.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ridemetrics/severity.report/internal/monitoring"
	"github.com/ridemetrics/severity.report/internal/normalize"
)

// methodStyle pairs a comparison key with its display label and line
// color. The order fixes the legend order.
type methodStyle struct {
	key   string
	label string
	color string
}

var methodStyles = []methodStyle{
	{"IQR_percentile", "IQR + P99", "blue"},
	{"IQR_iqr", "IQR + IQR", "green"},
	{"Z-Score_percentile", "Z-Score + P99", "red"},
	{"Z-Score_iqr", "Z-Score + IQR", "orange"},
}

// WriteComparisonCharts renders one HTML page per calendar day, each
// with the percentage score series for all four method combinations
// and guide lines at 50% and 75%. Returns the written file paths.
func WriteComparisonCharts(results map[string]normalize.Result, records []normalize.Record, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	days := uniqueDays(records)
	if len(days) == 0 {
		monitoring.Warnf("no records to chart")
		return nil, nil
	}

	var files []string
	for _, day := range days {
		line := buildDayChart(results, records, day)

		page := components.NewPage()
		page.AddCharts(line)

		path := filepath.Join(outputDir, fmt.Sprintf("vibration_percentage_%s.html", day.Format("2006-01-02")))
		f, err := os.Create(path)
		if err != nil {
			return files, fmt.Errorf("create chart file: %w", err)
		}
		if err := page.Render(f); err != nil {
			f.Close()
			return files, fmt.Errorf("render chart: %w", err)
		}
		if err := f.Close(); err != nil {
			return files, err
		}

		monitoring.Logf("wrote comparison chart %s", path)
		files = append(files, path)
	}
	return files, nil
}

// buildDayChart assembles the line chart for one day. The x axis is
// seconds since midnight so days with the same riding window line up
// across charts.
func buildDayChart(results map[string]normalize.Result, records []normalize.Record, day time.Time) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Vibration Severity Percentage",
			Width:     "1200px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Vibration Severity Percentage - %s", day.Format("2006-01-02")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (seconds since midnight)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Percentage Score (%)", Min: 0, Max: 100}),
	)

	var xAxis []int64
	for _, rec := range records {
		if sameDay(rec.Time, day) {
			xAxis = append(xAxis, secondsSinceMidnight(rec.Time))
		}
	}
	line.SetXAxis(xAxis)

	for si, style := range methodStyles {
		result, ok := results[style.key]
		if !ok {
			continue
		}

		var data []opts.LineData
		for i, rec := range records {
			if !sameDay(rec.Time, day) {
				continue
			}
			data = append(data, opts.LineData{Value: result.PercentageScores[i]})
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineStyleOpts(opts.LineStyle{Color: style.color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: style.color}),
		}
		// Guide lines ride on the first series only.
		if si == 0 {
			seriesOpts = append(seriesOpts,
				charts.WithMarkLineNameYAxisItemOpts(
					opts.MarkLineNameYAxisItem{Name: "50%", YAxis: 50},
					opts.MarkLineNameYAxisItem{Name: "75%", YAxis: 75},
				),
				charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "gray", Type: "dashed", Opacity: opts.Float(0.3),
					},
				}),
			)
		}
		line.AddSeries(style.label, data, seriesOpts...)
	}

	return line
}

// uniqueDays returns the distinct UTC calendar days in the series,
// ascending.
func uniqueDays(records []normalize.Record) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, rec := range records {
		day := rec.Time.UTC().Truncate(24 * time.Hour)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func sameDay(t, day time.Time) bool {
	return t.UTC().Truncate(24 * time.Hour).Equal(day)
}

func secondsSinceMidnight(t time.Time) int64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int64(t.Sub(midnight).Seconds())
}
