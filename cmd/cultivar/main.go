package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/verdant-sim/cultivar/components"
	"github.com/verdant-sim/cultivar/config"
	"github.com/verdant-sim/cultivar/environment"
	"github.com/verdant-sim/cultivar/genetics"
	"github.com/verdant-sim/cultivar/sim"
	"github.com/verdant-sim/cultivar/species"
	"github.com/verdant-sim/cultivar/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	strainsPath := flag.String("strains", "", "Extra strain CSV merged over the built-in catalog")
	plants := flag.Int("plants", 50, "Number of plants to start with")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output stats windows via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	catalog, err := species.LoadCatalog(*strainsPath)
	if err != nil {
		slog.Error("failed to load strain catalog", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	provider := environment.NewSimulatedProvider(
		rngSeed,
		environment.IndoorDefault,
		cfg.Environment.NoiseScale,
		cfg.Environment.NoiseOctaves,
		cfg.Environment.DayLengthSec,
		cfg.Environment.DriftAmplitude,
	)

	engine, err := sim.New(cfg, sim.Options{
		Provider: provider,
		Catalog:  catalog,
		Output:   output,
		Seed:     rngSeed,
		LogStats: *logStats,
	})
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Seed the grow: random genotypes spread across the catalog strains
	// and a handful of rooms.
	rng := rand.New(rand.NewSource(rngSeed))
	strains := catalog.Strains()
	rooms := []string{"room-a", "room-b", "room-c"}
	for i := 0; i < *plants; i++ {
		strain := strains[rng.Intn(len(strains))]
		room := rooms[rng.Intn(len(rooms))]
		engine.Plant(strain, room, genetics.Random(rng))
	}

	slog.Info("simulation started",
		"plants", engine.Population(),
		"strains", len(strains),
		"seed", rngSeed,
	)

	dt := cfg.Derived.DT32
	harvested := 0
	for tick := 0; *maxTicks == 0 || tick < *maxTicks; tick++ {
		engine.Tick(dt)
		harvested += harvestRipe(engine)
		if engine.Population() == 0 {
			slog.Info("population extinct, stopping")
			break
		}
	}

	stats := engine.Stats()
	slog.Info("simulation finished",
		"ticks", stats.Tick,
		"population", stats.Population,
		"harvested", harvested,
		"expressions", stats.Engine.Calculations,
		"cache_hits", stats.Engine.CacheHits,
		"avg_calc_us", stats.Engine.AvgCalc.Microseconds(),
	)
}

// harvestRipe cuts down every plant that has reached the harvestable
// stage, logging each result.
func harvestRipe(engine *sim.Sim) int {
	n := 0
	for _, id := range engine.PlantIDs() {
		stage, ok := engine.Stage(id)
		if !ok || stage != components.Harvestable {
			continue
		}
		if res, ok := engine.Harvest(id); ok {
			n++
			slog.Info("harvest",
				"plant", res.Plant,
				"strain", res.Strain,
				"grams", res.Grams,
				"potency", res.Potency,
				"quality", res.Quality.String(),
			)
		}
	}
	return n
}
