// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Environment EnvironmentConfig `yaml:"environment"`
	Fitness     FitnessConfig     `yaml:"fitness"`
	Stress      StressConfig      `yaml:"stress"`
	Adaptation  AdaptationConfig  `yaml:"adaptation"`
	Genetics    GeneticsConfig    `yaml:"genetics"`
	Batch       BatchConfig       `yaml:"batch"`
	Performance PerformanceConfig `yaml:"performance"`
	Growth      GrowthConfig      `yaml:"growth"`
	Harvest     HarvestConfig     `yaml:"harvest"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds tick timing and population parameters.
type SimulationConfig struct {
	DT           float64 `yaml:"dt"`            // seconds per tick
	MaxOrganisms int     `yaml:"max_organisms"` // hard cap on tracked organisms
	Seed         int64   `yaml:"seed"`          // RNG seed (0 = time-based)
}

// EnvironmentConfig holds simulated environment provider parameters.
type EnvironmentConfig struct {
	NoiseScale     float64 `yaml:"noise_scale"`     // base noise frequency for simulated drift
	NoiseOctaves   int     `yaml:"noise_octaves"`   // FBM octaves for simulated drift
	DayLengthSec   float64 `yaml:"day_length_sec"`  // simulated day length for diurnal cycles
	DriftAmplitude float64 `yaml:"drift_amplitude"` // fraction of baseline each factor may drift
}

// FitnessConfig holds environmental fitness calculation parameters.
// Factor weights must sum to 1; they are a tunable constant, not derived.
type FitnessConfig struct {
	TemperatureWeight float64 `yaml:"temperature_weight"`
	HumidityWeight    float64 `yaml:"humidity_weight"`
	LightWeight       float64 `yaml:"light_weight"`
	CO2Weight         float64 `yaml:"co2_weight"`

	InRangeFalloff float64 `yaml:"in_range_falloff"`  // max score loss at tolerance-range edge
	OutOfRangeRate float64 `yaml:"out_of_range_rate"` // penalty per normalized out-of-range distance

	TemperatureFloor float64 `yaml:"temperature_floor"` // minimum factor score outside range
	HumidityFloor    float64 `yaml:"humidity_floor"`
	LightFloor       float64 `yaml:"light_floor"`
	CO2Floor         float64 `yaml:"co2_floor"`
}

// StressConfig holds stress accumulation and recovery parameters.
type StressConfig struct {
	RecoveryRate         float64 `yaml:"recovery_rate"`          // stressor intensity decay per second
	LowFitnessThreshold  float64 `yaml:"low_fitness_threshold"`  // below this, environment synthesizes stress
	LowFitnessRate       float64 `yaml:"low_fitness_rate"`       // stress synthesis = (1-fitness) * this
	HighFitnessThreshold float64 `yaml:"high_fitness_threshold"` // above this, health regenerates
	RegenRate            float64 `yaml:"regen_rate"`             // regen = (fitness-threshold) * this
}

// AdaptationConfig holds adaptation tracker parameters.
type AdaptationConfig struct {
	Rate          float64 `yaml:"rate"`           // blend rate toward improved fitness
	DeclineFactor float64 `yaml:"decline_factor"` // rate multiplier when fitness declines
}

// GeneticsConfig holds trait expression parameters.
type GeneticsConfig struct {
	EnableEpistasis  bool    `yaml:"enable_epistasis"`
	EnablePleiotropy bool    `yaml:"enable_pleiotropy"`
	CacheWindowSec   float64 `yaml:"cache_window_sec"` // coarse shared cache refresh window
	CacheClearSec    float64 `yaml:"cache_clear_sec"`  // full cache clear interval
	HeightWeight     float64 `yaml:"height_weight"`    // overall-fitness trait weights
	PotencyWeight    float64 `yaml:"potency_weight"`
	CBDWeight        float64 `yaml:"cbd_weight"`
	YieldWeight      float64 `yaml:"yield_weight"`
}

// BatchConfig holds adaptive batch sizing parameters.
type BatchConfig struct {
	BaseSize        int     `yaml:"base_size"`        // starting slice size per tick
	MinSize         int     `yaml:"min_size"`         // floor when halving under load
	MaxSize         int     `yaml:"max_size"`         // cap when doubling
	MaxSizeHigh     int     `yaml:"max_size_high"`    // cap under high-capacity mode
	BatchThreshold  int     `yaml:"batch_threshold"`  // slices above this use the batched path
	FrameBudgetMS   float64 `yaml:"frame_budget_ms"`  // target per-tick cost
	ComfortFraction float64 `yaml:"comfort_fraction"` // under budget*this, slice size doubles
	OptimizeChance  float64 `yaml:"optimize_chance"`  // probability of optimization pass per full cycle
}

// PerformanceConfig holds host capacity hints.
// Caps are config-gated rather than hardware-probed.
type PerformanceConfig struct {
	HighCapacity bool `yaml:"high_capacity"`
	Workers      int  `yaml:"workers"` // batch expression workers (0 = GOMAXPROCS)
}

// GrowthConfig holds growth-stage advancement parameters.
type GrowthConfig struct {
	MinHealthToAdvance float64 `yaml:"min_health_to_advance"` // health fraction required to advance stage
	GlobalModifier     float64 `yaml:"global_modifier"`       // default global growth modifier
}

// HarvestConfig holds yield calculation parameters.
type HarvestConfig struct {
	BaseYieldGrams float64 `yaml:"base_yield_grams"` // yield for a nominal healthy plant
	HealthExponent float64 `yaml:"health_exponent"`  // yield sensitivity to final health
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks averaged for perf stats
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Simulation.DT as float32
	WeightSum      float64 // fitness factor weight sum
	TraitWeightSum float64 // genetics trait weight sum
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.WeightSum = c.Fitness.TemperatureWeight + c.Fitness.HumidityWeight +
		c.Fitness.LightWeight + c.Fitness.CO2Weight
	c.Derived.TraitWeightSum = c.Genetics.HeightWeight + c.Genetics.PotencyWeight +
		c.Genetics.CBDWeight + c.Genetics.YieldWeight
}

// validate rejects configurations that would break engine invariants.
func (c *Config) validate() error {
	const tol = 1e-6
	if d := c.Derived.WeightSum - 1.0; d > tol || d < -tol {
		return fmt.Errorf("config: fitness factor weights sum to %.4f, want 1.0", c.Derived.WeightSum)
	}
	if c.Batch.MinSize < 1 {
		return fmt.Errorf("config: batch.min_size must be >= 1, got %d", c.Batch.MinSize)
	}
	if c.Batch.MaxSize < c.Batch.MinSize {
		return fmt.Errorf("config: batch.max_size %d below min_size %d", c.Batch.MaxSize, c.Batch.MinSize)
	}
	if c.Simulation.DT <= 0 {
		return fmt.Errorf("config: simulation.dt must be positive, got %v", c.Simulation.DT)
	}
	if c.Genetics.CacheWindowSec < 0 {
		return fmt.Errorf("config: genetics.cache_window_sec must be >= 0, got %v", c.Genetics.CacheWindowSec)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
