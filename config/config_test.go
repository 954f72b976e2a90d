package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.Simulation.DT != 1.0 {
		t.Errorf("dt = %v, want 1.0", cfg.Simulation.DT)
	}
	if cfg.Derived.DT32 != 1.0 {
		t.Errorf("derived dt32 = %v, want 1.0", cfg.Derived.DT32)
	}
	if math.Abs(cfg.Derived.WeightSum-1.0) > 1e-6 {
		t.Errorf("fitness weight sum = %v, want 1.0", cfg.Derived.WeightSum)
	}
	if cfg.Batch.MinSize > cfg.Batch.BaseSize || cfg.Batch.BaseSize > cfg.Batch.MaxSize {
		t.Errorf("batch sizes out of order: min %d base %d max %d",
			cfg.Batch.MinSize, cfg.Batch.BaseSize, cfg.Batch.MaxSize)
	}
	if cfg.Batch.MaxSizeHigh < cfg.Batch.MaxSize {
		t.Errorf("high-capacity cap %d below standard cap %d", cfg.Batch.MaxSizeHigh, cfg.Batch.MaxSize)
	}
	if cfg.Genetics.CacheWindowSec <= 0 {
		t.Errorf("cache window = %v, want positive default", cfg.Genetics.CacheWindowSec)
	}
}

func TestLoadMergesUserFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := `simulation:
  dt: 0.5
batch:
  base_size: 10
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Simulation.DT != 0.5 {
		t.Errorf("dt = %v, want user override 0.5", cfg.Simulation.DT)
	}
	if cfg.Batch.BaseSize != 10 {
		t.Errorf("base_size = %d, want user override 10", cfg.Batch.BaseSize)
	}
	// Untouched sections keep their defaults.
	if cfg.Stress.RecoveryRate != 0.05 {
		t.Errorf("recovery_rate = %v, want default 0.05", cfg.Stress.RecoveryRate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"fitness weights off balance", "fitness:\n  temperature_weight: 0.9\n"},
		{"non-positive dt", "simulation:\n  dt: 0\n"},
		{"batch min below one", "batch:\n  min_size: 0\n"},
		{"batch max below min", "batch:\n  min_size: 10\n  max_size: 5\n"},
		{"negative cache window", "genetics:\n  cache_window_sec: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Simulation.DT = 0.25
	cfg.Simulation.Seed = 42

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("re-loading snapshot: %v", err)
	}
	if got.Simulation.DT != 0.25 || got.Simulation.Seed != 42 {
		t.Errorf("round trip lost values: dt %v seed %d", got.Simulation.DT, got.Simulation.Seed)
	}
}
