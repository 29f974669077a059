package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ridemetrics/severity.report/internal/db"
	"github.com/ridemetrics/severity.report/internal/monitoring"
)

// severityPalette runs from calm to severe.
var severityPalette = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// WriteSeverityMap renders the combined severity track as an HTML
// scatter chart: one point per second positioned by longitude and
// latitude, colored by severity score.
func WriteSeverityMap(points []db.CombinedPoint, outputDir string) (string, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("no combined points to map")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data := make([]opts.ScatterData, 0, len(points))
	var (
		minLat, maxLat = math.Inf(1), math.Inf(-1)
		minLon, maxLon = math.Inf(1), math.Inf(-1)
		maxScore       float64
	)
	for _, p := range points {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
		maxScore = math.Max(maxScore, p.SeverityScore)
		data = append(data, opts.ScatterData{Value: []interface{}{p.Lon, p.Lat, p.SeverityScore}})
	}
	if maxScore == 0 {
		maxScore = 1
	}

	// Pad the bounds so edge points stay visible.
	latPad := (maxLat - minLat) * 0.05
	lonPad := (maxLon - minLon) * 0.05
	if latPad == 0 {
		latPad = 0.001
	}
	if lonPad == 0 {
		lonPad = 0.001
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Severity Track Map",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Severity Track Map",
			Subtitle: fmt.Sprintf("points=%d", len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minLon - lonPad, Max: maxLon + lonPad, Name: "Longitude"}),
		charts.WithYAxisOpts(opts.YAxis{Min: minLat - latPad, Max: maxLat + latPad, Name: "Latitude"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxScore),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: severityPalette},
		}),
	)

	scatter.AddSeries("severity", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	path := filepath.Join(outputDir, "severity_map.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create map file: %w", err)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		return "", fmt.Errorf("render map: %w", err)
	}

	monitoring.Logf("wrote severity map %s", path)
	return path, nil
}
