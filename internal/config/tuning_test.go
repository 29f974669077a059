package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ridemetrics/severity.report/internal/geo"
	"github.com/ridemetrics/severity.report/internal/normalize"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetWorkers() != 4 {
		t.Errorf("GetWorkers() = %d, want 4", cfg.GetWorkers())
	}
	if cfg.GetGapFillPolicy() != geo.FillUniform {
		t.Errorf("GetGapFillPolicy() = %q, want %q", cfg.GetGapFillPolicy(), geo.FillUniform)
	}
	if cfg.GetGPXShiftHours() != 8 {
		t.Errorf("GetGPXShiftHours() = %d, want 8", cfg.GetGPXShiftHours())
	}
	if cfg.GetOutlierMethod() != normalize.OutlierIQR {
		t.Errorf("GetOutlierMethod() = %q, want %q", cfg.GetOutlierMethod(), normalize.OutlierIQR)
	}
	if cfg.GetMaxMethod() != normalize.MaxPercentile {
		t.Errorf("GetMaxMethod() = %q, want %q", cfg.GetMaxMethod(), normalize.MaxPercentile)
	}
	if cfg.GetPercentile() != 99.0 {
		t.Errorf("GetPercentile() = %f, want 99.0", cfg.GetPercentile())
	}
	if cfg.GetDataDir() != "Datas" {
		t.Errorf("GetDataDir() = %q, want Datas", cfg.GetDataDir())
	}
	if cfg.GetTracksDir() != "tracks" {
		t.Errorf("GetTracksDir() = %q, want tracks", cfg.GetTracksDir())
	}
	if cfg.GetOutputDir() != "analysis_output" {
		t.Errorf("GetOutputDir() = %q, want analysis_output", cfg.GetOutputDir())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "workers": 8,
  "gap_fill_policy": "segmented",
  "gpx_shift_hours": 0,
  "outlier_method": "Z-Score",
  "max_method": "iqr",
  "percentile": 95,
  "data_dir": "exports"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("LoadTuningConfig failed: %v", err)
	}

	if cfg.GetWorkers() != 8 {
		t.Errorf("GetWorkers() = %d, want 8", cfg.GetWorkers())
	}
	if cfg.GetGapFillPolicy() != geo.FillSegmented {
		t.Errorf("GetGapFillPolicy() = %q, want %q", cfg.GetGapFillPolicy(), geo.FillSegmented)
	}
	if cfg.GetGPXShiftHours() != 0 {
		t.Errorf("GetGPXShiftHours() = %d, want 0", cfg.GetGPXShiftHours())
	}
	if cfg.GetOutlierMethod() != normalize.OutlierZScore {
		t.Errorf("GetOutlierMethod() = %q, want %q", cfg.GetOutlierMethod(), normalize.OutlierZScore)
	}
	if cfg.GetMaxMethod() != normalize.MaxIQR {
		t.Errorf("GetMaxMethod() = %q, want %q", cfg.GetMaxMethod(), normalize.MaxIQR)
	}
	if cfg.GetPercentile() != 95 {
		t.Errorf("GetPercentile() = %f, want 95", cfg.GetPercentile())
	}
	if cfg.GetDataDir() != "exports" {
		t.Errorf("GetDataDir() = %q, want exports", cfg.GetDataDir())
	}

	// Fields absent from the file keep their defaults.
	if cfg.GetTracksDir() != "tracks" {
		t.Errorf("GetTracksDir() = %q, want default", cfg.GetTracksDir())
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	if _, err := LoadTuningConfig("tuning.yaml"); err == nil {
		t.Error("expected error for non-.json extension")
	}
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadTuningConfigInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TuningConfig
		wantErr bool
	}{
		{"empty is valid", TuningConfig{}, false},
		{"valid policy", TuningConfig{GapFillPolicy: ptrString("uniform")}, false},
		{"bad policy", TuningConfig{GapFillPolicy: ptrString("sparse")}, true},
		{"zero workers", TuningConfig{Workers: ptrInt(0)}, true},
		{"valid outlier method", TuningConfig{OutlierMethod: ptrString("Z-Score")}, false},
		{"bad outlier method", TuningConfig{OutlierMethod: ptrString("MAD")}, true},
		{"bad max method", TuningConfig{MaxMethod: ptrString("mean")}, true},
		{"percentile zero", TuningConfig{Percentile: ptrFloat64(0)}, true},
		{"percentile over 100", TuningConfig{Percentile: ptrFloat64(101)}, true},
		{"percentile 100", TuningConfig{Percentile: ptrFloat64(100)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPointerHelpers(t *testing.T) {
	if v := ptrInt64(7); *v != 7 {
		t.Errorf("ptrInt64(7) = %d", *v)
	}
}
