package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ridemetrics/severity.report/internal/config"
	"github.com/ridemetrics/severity.report/internal/db"
	"github.com/ridemetrics/severity.report/internal/normalize"
	"github.com/ridemetrics/severity.report/internal/pipeline"
	"github.com/ridemetrics/severity.report/internal/report"
	"github.com/ridemetrics/severity.report/internal/units"
)

// loadConfig reads the tuning config named by -config, or returns an
// empty config so every getter falls back to its default.
func loadConfig() *config.TuningConfig {
	if *configPath == "" {
		return config.EmptyTuningConfig()
	}
	cfg, err := config.LoadTuningConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// openRunner opens the database, migrates it to the current schema,
// and wraps it in a pipeline runner.
func openRunner() (*pipeline.Runner, func()) {
	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return pipeline.NewRunner(database, loadConfig()), func() { database.Close() }
}

func handleAnalyze() {
	r, closeDB := openRunner()
	defer closeDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := r.RunVibrationBatch(ctx)
	if err != nil {
		log.Fatalf("Batch analysis failed: %v", err)
	}
	fmt.Printf("Run %s: %d files (%d processed, %d skipped, %d failed)\n",
		summary.RunID, summary.Total, summary.Processed, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		for _, res := range summary.Results {
			if res.Err != nil {
				fmt.Printf("  %s: %v\n", res.FileName, res.Err)
			}
		}
	}
}

func handleGPS() {
	r, closeDB := openRunner()
	defer closeDB()

	summary, err := r.RunGPXIngest()
	if err != nil {
		log.Fatalf("GPX ingest failed: %v", err)
	}
	fmt.Printf("%d track files (%d ingested, %d skipped), %d fixes stored\n",
		summary.Total, summary.Ingested, summary.Skipped, summary.Fixes)
}

func handleTracks() {
	r, closeDB := openRunner()
	defer closeDB()

	count, err := r.ProcessGPS()
	if err != nil {
		log.Fatalf("Track processing failed: %v", err)
	}
	fmt.Printf("Processed track rebuilt: %d points\n", count)
}

// loadSeveritySeries pulls the stored severity series into a loaded
// normalizer.
func loadSeveritySeries(r *pipeline.Runner) (*normalize.Normalizer, []normalize.Record) {
	records, err := r.DB.SeveritySeries("")
	if err != nil {
		log.Fatalf("Failed to load severity series: %v", err)
	}
	if len(records) == 0 {
		log.Fatal("No severity records stored; run 'analyze' first")
	}

	n := normalize.New()
	n.Load(records)
	return n, records
}

func handleNormalize() {
	r, closeDB := openRunner()
	defer closeDB()

	n, records := loadSeveritySeries(r)
	cfg := r.Config

	result, err := n.RobustMax(cfg.GetOutlierMethod(), cfg.GetMaxMethod(), cfg.GetPercentile())
	if err != nil {
		log.Fatalf("Normalization failed: %v", err)
	}

	stats := n.Stats()
	fmt.Printf("Records: %d (%.2f Hz effective)\n", stats.TotalPoints, stats.SamplingRateHz)
	fmt.Printf("Raw severity: min=%.4f mean=%.4f max=%.4f std=%.4f\n",
		stats.RawMin, stats.RawMean, stats.RawMax, stats.RawStd)
	fmt.Printf("Distribution: %s (skew=%.3f, kurtosis=%.3f)\n",
		stats.Distribution.Type, stats.Distribution.Skewness, stats.Distribution.Kurtosis)
	fmt.Printf("Method: %s + %s\n", cfg.GetOutlierMethod(), cfg.GetMaxMethod())
	fmt.Printf("Outliers removed: %d of %d\n", result.OutliersRemoved, len(records))
	fmt.Printf("Scientific max: %.4f\n", result.ScientificMax)
}

func handleReport() {
	r, closeDB := openRunner()
	defer closeDB()

	n, records := loadSeveritySeries(r)
	cfg := r.Config
	outputDir := cfg.GetOutputDir()

	results, err := n.CompareMethods(cfg.GetPercentile())
	if err != nil {
		log.Fatalf("Method comparison failed: %v", err)
	}

	files, err := report.WriteComparisonCharts(results, records, outputDir)
	if err != nil {
		log.Fatalf("Failed to write comparison charts: %v", err)
	}
	fmt.Printf("Wrote %d comparison charts to %s\n", len(files), outputDir)

	if path, err := report.WriteSeverityPlot(records, outputDir); err != nil {
		log.Printf("Severity plot skipped: %v", err)
	} else {
		fmt.Printf("Wrote %s\n", path)
	}

	if !units.IsValid(*displayUnits) {
		log.Fatalf("Invalid units %q (valid: %s)", *displayUnits, units.GetValidUnitsString())
	}
	points, err := r.DB.TrackPoints()
	if err != nil {
		log.Fatalf("Failed to load track points: %v", err)
	}
	if len(points) == 0 {
		log.Print("No processed track stored; velocity plot skipped")
		return
	}
	if path, err := report.WriteVelocityPlot(points, *displayUnits, outputDir); err != nil {
		log.Printf("Velocity plot skipped: %v", err)
	} else {
		fmt.Printf("Wrote %s\n", path)
	}
}

func handleMap() {
	r, closeDB := openRunner()
	defer closeDB()

	points, err := r.DB.CombinedSeverityTrack()
	if err != nil {
		log.Fatalf("Failed to load combined track: %v", err)
	}
	if len(points) == 0 {
		log.Fatal("No overlapping severity and track data; run 'analyze' and 'tracks' first")
	}

	path, err := report.WriteSeverityMap(points, r.Config.GetOutputDir())
	if err != nil {
		log.Fatalf("Failed to write severity map: %v", err)
	}
	fmt.Printf("Wrote %s\n", path)
}

func handleMigrate(args []string) {
	db.RunMigrateCommand(args, *dbPath)
}
