package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ridemetrics/severity.report/internal/geo"
	"github.com/ridemetrics/severity.report/internal/normalize"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// All fields are pointers so a partial JSON file only overrides what it
// names; the Get* methods supply defaults for everything else.
type TuningConfig struct {
	// Analysis params
	Workers *int `json:"workers,omitempty"`

	// GPS params
	GapFillPolicy *string `json:"gap_fill_policy,omitempty"` // "uniform" or "segmented"
	GPXShiftHours *int    `json:"gpx_shift_hours,omitempty"`

	// Normalization params
	OutlierMethod *string  `json:"outlier_method,omitempty"` // "IQR" or "Z-Score"
	MaxMethod     *string  `json:"max_method,omitempty"`     // "percentile" or "iqr"
	Percentile    *float64 `json:"percentile,omitempty"`

	// Paths
	DataDir   *string `json:"data_dir,omitempty"`
	TracksDir *string `json:"tracks_dir,omitempty"`
	OutputDir *string `json:"output_dir,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", *c.Workers)
	}

	if c.GapFillPolicy != nil {
		switch geo.FillPolicy(*c.GapFillPolicy) {
		case geo.FillUniform, geo.FillSegmented:
		default:
			return fmt.Errorf("gap_fill_policy must be %q or %q, got %q",
				geo.FillUniform, geo.FillSegmented, *c.GapFillPolicy)
		}
	}

	if c.OutlierMethod != nil {
		switch normalize.OutlierMethod(*c.OutlierMethod) {
		case normalize.OutlierIQR, normalize.OutlierZScore:
		default:
			return fmt.Errorf("outlier_method must be %q or %q, got %q",
				normalize.OutlierIQR, normalize.OutlierZScore, *c.OutlierMethod)
		}
	}
	if c.MaxMethod != nil {
		switch normalize.MaxMethod(*c.MaxMethod) {
		case normalize.MaxPercentile, normalize.MaxIQR:
		default:
			return fmt.Errorf("max_method must be %q or %q, got %q",
				normalize.MaxPercentile, normalize.MaxIQR, *c.MaxMethod)
		}
	}

	if c.Percentile != nil {
		if *c.Percentile <= 0 || *c.Percentile > 100 {
			return fmt.Errorf("percentile must be in (0, 100], got %f", *c.Percentile)
		}
	}

	return nil
}

// GetWorkers returns the analysis worker count or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 4
	}
	return *c.Workers
}

// GetGapFillPolicy returns the gap fill policy or the default.
func (c *TuningConfig) GetGapFillPolicy() geo.FillPolicy {
	if c.GapFillPolicy == nil {
		return geo.FillUniform
	}
	return geo.FillPolicy(*c.GapFillPolicy)
}

// GetGPXShiftHours returns the hours added to GPX timestamps or the
// default.
func (c *TuningConfig) GetGPXShiftHours() int {
	if c.GPXShiftHours == nil {
		return 8
	}
	return *c.GPXShiftHours
}

// GetOutlierMethod returns the outlier detection method or the default.
func (c *TuningConfig) GetOutlierMethod() normalize.OutlierMethod {
	if c.OutlierMethod == nil {
		return normalize.OutlierIQR
	}
	return normalize.OutlierMethod(*c.OutlierMethod)
}

// GetMaxMethod returns the scientific max method or the default.
func (c *TuningConfig) GetMaxMethod() normalize.MaxMethod {
	if c.MaxMethod == nil {
		return normalize.MaxPercentile
	}
	return normalize.MaxMethod(*c.MaxMethod)
}

// GetPercentile returns the percentile used by the percentile max
// method or the default.
func (c *TuningConfig) GetPercentile() float64 {
	if c.Percentile == nil {
		return normalize.DefaultPercentile
	}
	return *c.Percentile
}

// GetDataDir returns the vibration data directory or the default.
func (c *TuningConfig) GetDataDir() string {
	if c.DataDir == nil {
		return "Datas"
	}
	return *c.DataDir
}

// GetTracksDir returns the GPX track directory or the default.
func (c *TuningConfig) GetTracksDir() string {
	if c.TracksDir == nil {
		return "tracks"
	}
	return *c.TracksDir
}

// GetOutputDir returns the chart output directory or the default.
func (c *TuningConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return "analysis_output"
	}
	return *c.OutputDir
}
