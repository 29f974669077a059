// Package pipeline drives the end-to-end analysis passes: batch
// vibration scoring, GPX ingestion, GPS track processing, and the
// combined severity track.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ridemetrics/severity.report/internal/config"
	"github.com/ridemetrics/severity.report/internal/db"
	"github.com/ridemetrics/severity.report/internal/ingest"
	"github.com/ridemetrics/severity.report/internal/monitoring"
	"github.com/ridemetrics/severity.report/internal/timeutil"
	"github.com/ridemetrics/severity.report/internal/vibration"
)

// epochSkipTolerance allows the stored epoch range to differ from the
// file's by a second on either side when deciding whether a file has
// already been analyzed. Sub-second truncation at ingest can move the
// boundary samples across a second edge.
const epochSkipTolerance = 1

// Runner executes analysis passes against one database.
type Runner struct {
	DB     *db.DB
	Config *config.TuningConfig
	Clock  timeutil.Clock
}

// NewRunner builds a Runner with the real clock.
func NewRunner(database *db.DB, cfg *config.TuningConfig) *Runner {
	return &Runner{DB: database, Config: cfg, Clock: timeutil.RealClock{}}
}

// FileResult records the outcome for one vibration file.
type FileResult struct {
	FileName string
	Buckets  int
	Skipped  bool
	Err      error
}

// BatchSummary reports one batch run. RunID ties the run's log lines
// together.
type BatchSummary struct {
	RunID     string
	Total     int
	Processed int
	Skipped   int
	Failed    int
	Results   []FileResult
}

// RunVibrationBatch analyzes every vibration export under the data
// directory. Files whose full epoch range is already stored are
// skipped. Files are fanned out to a bounded worker pool; a failure in
// one file does not stop the others.
func (r *Runner) RunVibrationBatch(ctx context.Context) (*BatchSummary, error) {
	dataDir := r.Config.GetDataDir()
	files, err := listDataFiles(dataDir)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		RunID: uuid.New().String(),
		Total: len(files),
	}
	if len(files) == 0 {
		monitoring.Warnf("run %s: no data files found in %s", summary.RunID, dataDir)
		return summary, nil
	}

	start := r.Clock.Now()
	monitoring.Logf("run %s: analyzing %d files with %d workers", summary.RunID, len(files), r.Config.GetWorkers())

	jobs := make(chan string)
	results := make(chan FileResult)

	var wg sync.WaitGroup
	for i := 0; i < r.Config.GetWorkers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- r.analyzeFile(path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		summary.Results = append(summary.Results, res)
		switch {
		case res.Err != nil:
			summary.Failed++
			monitoring.Warnf("run %s: %s failed: %v", summary.RunID, res.FileName, res.Err)
		case res.Skipped:
			summary.Skipped++
			monitoring.Logf("run %s: %s already analyzed, skipping", summary.RunID, res.FileName)
		default:
			summary.Processed++
			monitoring.Logf("run %s: %s analyzed, %d seconds stored", summary.RunID, res.FileName, res.Buckets)
		}
	}

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].FileName < summary.Results[j].FileName
	})

	monitoring.Logf("run %s: done in %s (%d processed, %d skipped, %d failed)",
		summary.RunID, r.Clock.Since(start), summary.Processed, summary.Skipped, summary.Failed)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}
	return summary, nil
}

// analyzeFile runs the full pass for one export: parse, aggregate by
// second, score, and store both the raw samples and the severity
// records.
func (r *Runner) analyzeFile(path string) FileResult {
	name := filepath.Base(path)
	res := FileResult{FileName: name}

	samples, err := ingest.ReadVibrationFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	skipped, err := r.alreadyAnalyzed(name, samples)
	if err != nil {
		res.Err = err
		return res
	}
	if skipped {
		res.Skipped = true
		return res
	}

	buckets, err := vibration.AggregateBySecond(samples)
	if err != nil {
		res.Err = err
		return res
	}
	records := vibration.ScoreBuckets(buckets)

	for _, s := range samples {
		if _, err := r.DB.UpsertRawSample(name, s); err != nil {
			res.Err = err
			return res
		}
	}
	for _, rec := range records {
		if err := r.DB.UpsertSeverity(name, rec); err != nil {
			res.Err = err
			return res
		}
	}

	res.Buckets = len(records)
	return res
}

// alreadyAnalyzed reports whether the file's sample range is already
// stored, within epochSkipTolerance at each end.
func (r *Runner) alreadyAnalyzed(fileName string, samples []vibration.RawSample) (bool, error) {
	first, last, ok, err := r.DB.FileEpochRange(fileName)
	if err != nil {
		return false, err
	}
	if !ok || len(samples) == 0 {
		return false, nil
	}

	fileFirst := samples[0].Time.Unix()
	fileLast := samples[0].Time.Unix()
	for _, s := range samples[1:] {
		epoch := s.Time.Unix()
		if epoch < fileFirst {
			fileFirst = epoch
		}
		if epoch > fileLast {
			fileLast = epoch
		}
	}

	return abs64(first-fileFirst) <= epochSkipTolerance && abs64(last-fileLast) <= epochSkipTolerance, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// listDataFiles returns the vibration exports under dir, sorted by
// name. Only .txt files count; the logger writes nothing else.
func listDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
