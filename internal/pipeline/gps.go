package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ridemetrics/severity.report/internal/geo"
	"github.com/ridemetrics/severity.report/internal/ingest"
	"github.com/ridemetrics/severity.report/internal/monitoring"
)

// GPXSummary reports one track ingestion pass.
type GPXSummary struct {
	Total    int
	Ingested int
	Skipped  int
	Fixes    int
}

// RunGPXIngest loads every GPX file under the tracks directory into
// the store. Files already present, by name, are skipped.
func (r *Runner) RunGPXIngest() (*GPXSummary, error) {
	tracksDir := r.Config.GetTracksDir()
	entries, err := os.ReadDir(tracksDir)
	if err != nil {
		return nil, fmt.Errorf("read tracks directory: %w", err)
	}

	shift := time.Duration(r.Config.GetGPXShiftHours()) * time.Hour

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".gpx") {
			continue
		}
		files = append(files, filepath.Join(tracksDir, entry.Name()))
	}
	sort.Strings(files)

	summary := &GPXSummary{Total: len(files)}
	for _, path := range files {
		name := filepath.Base(path)

		has, err := r.DB.HasGeoFile(name)
		if err != nil {
			return summary, err
		}
		if has {
			summary.Skipped++
			monitoring.Logf("%s already ingested, skipping", name)
			continue
		}

		fixes, err := ingest.ReadGPXFile(path, shift)
		if err != nil {
			return summary, err
		}
		for _, fix := range fixes {
			if err := r.DB.UpsertGeoFix(name, fix); err != nil {
				return summary, err
			}
		}

		summary.Ingested++
		summary.Fixes += len(fixes)
		monitoring.Logf("%s ingested, %d fixes", name, len(fixes))
	}

	return summary, nil
}

// ProcessGPS recomputes the processed track from the stored fixes:
// gap filling per the configured policy, then velocity derivation.
// The previous processed track is replaced wholesale.
func (r *Runner) ProcessGPS() (int, error) {
	fixes, err := r.DB.GeoFixes()
	if err != nil {
		return 0, err
	}

	policy := r.Config.GetGapFillPolicy()
	filled := geo.FillGaps(fixes, policy)
	if len(filled) == 0 {
		monitoring.Warnf("no GPS fixes to process")
		return 0, nil
	}

	points := geo.ComputeVelocities(filled)

	if err := r.DB.ClearTrackPoints(); err != nil {
		return 0, err
	}
	for _, p := range points {
		if err := r.DB.UpsertTrackPoint(p); err != nil {
			return 0, err
		}
	}

	monitoring.Logf("processed track: %d points (%s gap fill)", len(points), policy)
	return len(points), nil
}
