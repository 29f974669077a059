package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ridemetrics/severity.report/internal/geo"
	"github.com/ridemetrics/severity.report/internal/normalize"
	"github.com/ridemetrics/severity.report/internal/units"
)

// WriteSeverityPlot saves a static PNG of the raw severity series over
// time. The x axis is the epoch second so gaps in coverage stay
// visible.
func WriteSeverityPlot(records []normalize.Record, outputDir string) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no severity records to plot")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Severity Score Over Time"
	p.X.Label.Text = "Epoch (s)"
	p.Y.Label.Text = "Severity Score"

	pts := make(plotter.XYs, 0, len(records))
	for _, rec := range records {
		pts = append(pts, plotter.XY{X: float64(rec.EpochSeconds), Y: rec.SeverityScore})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", fmt.Errorf("build severity line: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("severity", line)
	p.Legend.Top = true

	path := filepath.Join(outputDir, "severity_scores.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save severity plot: %w", err)
	}
	return path, nil
}

// WriteVelocityPlot saves a static PNG of the processed track velocity
// in the requested display units.
func WriteVelocityPlot(points []geo.TrackPoint, displayUnits, outputDir string) (string, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("no track points to plot")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Track Velocity Over Time"
	p.X.Label.Text = "Epoch (s)"
	p.Y.Label.Text = fmt.Sprintf("Velocity (%s)", displayUnits)

	pts := make(plotter.XYs, 0, len(points))
	for _, point := range points {
		pts = append(pts, plotter.XY{
			X: float64(point.EpochSeconds),
			Y: units.ConvertSpeed(point.VelocityMagnitude, displayUnits),
		})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", fmt.Errorf("build velocity line: %w", err)
	}
	line.Color = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("velocity", line)
	p.Legend.Top = true

	path := filepath.Join(outputDir, "track_velocity.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save velocity plot: %w", err)
	}
	return path, nil
}
