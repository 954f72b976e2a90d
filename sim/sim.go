// Package sim is the per-tick driver: it samples the environment for each
// tracked plant, runs the fitness, stress, adaptation, and trait
// expression calculations, applies the results back onto plant state, and
// adapts its own slice size to measured tick cost.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/verdant-sim/cultivar/adaptation"
	"github.com/verdant-sim/cultivar/components"
	"github.com/verdant-sim/cultivar/config"
	"github.com/verdant-sim/cultivar/environment"
	"github.com/verdant-sim/cultivar/genetics"
	"github.com/verdant-sim/cultivar/species"
	"github.com/verdant-sim/cultivar/stress"
	"github.com/verdant-sim/cultivar/telemetry"
)

// Options wires the simulation's collaborators at construction. There is
// no ambient registry: everything the orchestrator talks to arrives here.
type Options struct {
	Provider environment.Provider  // nil = indoor default everywhere
	Catalog  *species.Catalog      // required
	Sources  *stress.SourceCatalog // nil = built-in sources
	Output   *telemetry.OutputManager
	Seed     int64
	LogStats bool
}

// expressionEngine is the slice of the genetics engine the orchestrator
// drives. Narrowed to an interface so the tick pipeline's failure
// handling can be exercised against substitute engines.
type expressionEngine interface {
	Evaluate(req genetics.Request, now float64) genetics.Result
	EvaluateBatch(reqs []genetics.Request, now float64) []genetics.Result
	ClearCache()
	CompactCache(maxEntries int)
	CacheSize() int
	EngineStats() genetics.Stats
	Close()
}

// Sim owns the tracked plant population and all engine state.
type Sim struct {
	cfg *config.Config
	rng *rand.Rand

	world       *ecs.World
	plantMapper *ecs.Map5[
		components.Identity,
		components.Health,
		components.Growth,
		components.Vitals,
		components.Size,
	]
	idMap     *ecs.Map1[components.Identity]
	healthMap *ecs.Map1[components.Health]
	growthMap *ecs.Map1[components.Growth]
	vitalsMap *ecs.Map1[components.Vitals]
	sizeMap   *ecs.Map1[components.Size]

	// Side tables keyed by arena handle (genotypes are shared read-only
	// with ancestry records, so they live outside the component store).
	genotypes map[uint32]*genetics.Genotype
	lastExpr  map[uint32]genetics.Result
	byID      map[uuid.UUID]ecs.Entity

	// Round-robin slice state
	tracked   []ecs.Entity
	cursor    int
	sliceSize int

	provider  environment.Provider
	catalog   *species.Catalog
	sources   *stress.SourceCatalog
	ledger    *stress.Ledger
	adapt     *adaptation.Tracker
	expr      expressionEngine
	fitParams species.FitnessParams

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	tick            int64
	simTime         float64
	nextHandle      uint32
	lastCacheClear  float64
	globalGrowthMod float32
	population      int
}

// New builds a simulation from explicit collaborators.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sim: nil config")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("sim: species catalog is required")
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sources := opts.Sources
	if sources == nil {
		sources = stress.NewSourceCatalog()
	}

	world := ecs.NewWorld()
	s := &Sim{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		world: world,
		plantMapper: ecs.NewMap5[
			components.Identity,
			components.Health,
			components.Growth,
			components.Vitals,
			components.Size,
		](world),
		idMap:     ecs.NewMap1[components.Identity](world),
		healthMap: ecs.NewMap1[components.Health](world),
		growthMap: ecs.NewMap1[components.Growth](world),
		vitalsMap: ecs.NewMap1[components.Vitals](world),
		sizeMap:   ecs.NewMap1[components.Size](world),

		genotypes: make(map[uint32]*genetics.Genotype),
		lastExpr:  make(map[uint32]genetics.Result),
		byID:      make(map[uuid.UUID]ecs.Entity),

		provider:  opts.Provider,
		catalog:   opts.Catalog,
		sources:   sources,
		fitParams: species.ParamsFromConfig(&cfg.Fitness),

		ledger: stress.NewLedger(stress.Params{
			RecoveryRate:         float32(cfg.Stress.RecoveryRate),
			LowFitnessThreshold:  float32(cfg.Stress.LowFitnessThreshold),
			LowFitnessRate:       float32(cfg.Stress.LowFitnessRate),
			HighFitnessThreshold: float32(cfg.Stress.HighFitnessThreshold),
			RegenRate:            float32(cfg.Stress.RegenRate),
		}),
		adapt: adaptation.NewTracker(adaptation.Params{
			Rate:          float32(cfg.Adaptation.Rate),
			DeclineFactor: float32(cfg.Adaptation.DeclineFactor),
		}),
		expr: genetics.NewEngine(genetics.Params{
			Epistasis:      cfg.Genetics.EnableEpistasis,
			Pleiotropy:     cfg.Genetics.EnablePleiotropy,
			CacheWindowSec: cfg.Genetics.CacheWindowSec,
			TraitWeights: [genetics.NumTraits]float32{
				genetics.TraitHeight:  float32(cfg.Genetics.HeightWeight),
				genetics.TraitPotency: float32(cfg.Genetics.PotencyWeight),
				genetics.TraitCBD:     float32(cfg.Genetics.CBDWeight),
				genetics.TraitYield:   float32(cfg.Genetics.YieldWeight),
			},
			Workers: cfg.Performance.Workers,
		}),

		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:    opts.Output,
		logStats:  opts.LogStats,

		sliceSize:       cfg.Batch.BaseSize,
		globalGrowthMod: float32(cfg.Growth.GlobalModifier),
		nextHandle:      1,
	}

	return s, nil
}

// Close releases engine resources.
func (s *Sim) Close() {
	s.expr.Close()
}

// Plant adds a tracked plant. A nil genotype is allowed: such plants run
// the basic non-genetic update path. An unknown strain is not an error
// either; the plant scores fitness 1.0 until the strain appears in the
// catalog, and the miss is logged with the closest catalog name.
func (s *Sim) Plant(strain, location string, genotype *genetics.Genotype) uuid.UUID {
	if s.population >= s.cfg.Simulation.MaxOrganisms {
		slog.Warn("plant rejected, population at cap", "cap", s.cfg.Simulation.MaxOrganisms)
		return uuid.Nil
	}

	profile := s.catalog.Lookup(strain)
	if profile == nil {
		slog.Warn("unknown strain, plant will score neutral fitness",
			"strain", strain,
			"closest", s.catalog.Suggest(strain),
		)
	}

	handle := s.nextHandle
	s.nextHandle++
	id := uuid.New()

	identity := components.Identity{ID: id, Handle: handle, Strain: strain, Location: location}
	health := components.Health{Value: 1, Max: 1, Alive: true}
	growth := components.Growth{Stage: components.Seed}
	vitals := components.Vitals{Fitness: 1}
	size := components.Size{Height: 0.01, Canopy: 0.01, RootDepth: 0.01}

	entity := s.plantMapper.NewEntity(&identity, &health, &growth, &vitals, &size)

	if genotype != nil {
		s.genotypes[handle] = genotype
	}
	s.byID[id] = entity
	s.tracked = append(s.tracked, entity)
	s.population++

	// Adaptation baselines at the first measured fitness so new plants
	// don't climb from zero.
	fit := species.Score(profile, s.sample(entity), s.fitParams)
	s.adapt.Seed(handle, fit.Combined)

	return id
}

// entityOf resolves an external id, returning the zero entity when the
// plant is unknown or already removed.
func (s *Sim) entityOf(id uuid.UUID) (ecs.Entity, bool) {
	e, ok := s.byID[id]
	if !ok || !s.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// remove destroys a plant and every side-table record attached to it.
func (s *Sim) remove(entity ecs.Entity) {
	identity := s.idMap.Get(entity)
	if identity != nil {
		s.ledger.Drop(identity.Handle)
		s.adapt.Drop(identity.Handle)
		delete(s.genotypes, identity.Handle)
		delete(s.lastExpr, identity.Handle)
		delete(s.byID, identity.ID)
	}
	s.plantMapper.Remove(entity)
	s.population--
}

// Population returns the number of tracked plants.
func (s *Sim) Population() int {
	return s.population
}

// TickCount returns the number of completed ticks.
func (s *Sim) TickCount() int64 {
	return s.tick
}

// SimTime returns elapsed simulation time in seconds.
func (s *Sim) SimTime() float64 {
	return s.simTime
}
