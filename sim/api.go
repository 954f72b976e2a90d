package sim

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/verdant-sim/cultivar/components"
	"github.com/verdant-sim/cultivar/genetics"
	"github.com/verdant-sim/cultivar/stress"
	"github.com/verdant-sim/cultivar/telemetry"
)

// EnvironmentalFitness returns the plant's last combined environmental
// fitness, or 0 for an unknown plant.
func (s *Sim) EnvironmentalFitness(id uuid.UUID) float32 {
	entity, ok := s.entityOf(id)
	if !ok {
		return 0
	}
	vitals := s.vitalsMap.Get(entity)
	if vitals == nil {
		return 0
	}
	return vitals.Fitness
}

// StressLevel returns the plant's aggregate stress level.
func (s *Sim) StressLevel(id uuid.UUID) float32 {
	entity, ok := s.entityOf(id)
	if !ok {
		return 0
	}
	identity := s.idMap.Get(entity)
	if identity == nil {
		return 0
	}
	return s.ledger.Level(identity.Handle)
}

// ActiveStressors returns a copy of the plant's active stressors.
func (s *Sim) ActiveStressors(id uuid.UUID) []stress.Stressor {
	entity, ok := s.entityOf(id)
	if !ok {
		return nil
	}
	identity := s.idMap.Get(entity)
	if identity == nil {
		return nil
	}
	return s.ledger.Stressors(identity.Handle)
}

// LastExpression returns the plant's most recent trait expression result.
// The snapshot is read-only for inspection; it is never re-mutated.
func (s *Sim) LastExpression(id uuid.UUID) (genetics.Result, bool) {
	entity, ok := s.entityOf(id)
	if !ok {
		return genetics.Result{}, false
	}
	identity := s.idMap.Get(entity)
	if identity == nil {
		return genetics.Result{}, false
	}
	res, ok := s.lastExpr[identity.Handle]
	return res, ok
}

// ApplyStress applies a named stress source at the given intensity.
// Unknown plants, unknown sources, and non-positive intensities are
// silently ignored beyond a diagnostic log.
func (s *Sim) ApplyStress(id uuid.UUID, sourceName string, intensity float32) {
	if intensity <= 0 {
		slog.Debug("ignoring non-positive stress intensity",
			"plant", id, "source", sourceName, "intensity", intensity)
		return
	}
	entity, ok := s.entityOf(id)
	if !ok {
		slog.Debug("stress applied to unknown plant", "plant", id)
		return
	}
	src, ok := s.sources.Lookup(sourceName)
	if !ok {
		slog.Debug("unknown stress source", "source", sourceName)
		return
	}
	identity := s.idMap.Get(entity)
	growth := s.growthMap.Get(entity)
	if identity == nil || growth == nil {
		return
	}
	s.ledger.Apply(identity.Handle, src, intensity, growth.Age)
	s.collector.RecordStressApplied()
}

// RemoveStress clears a named stress source from the plant.
func (s *Sim) RemoveStress(id uuid.UUID, sourceName string) {
	entity, ok := s.entityOf(id)
	if !ok {
		return
	}
	identity := s.idMap.Get(entity)
	if identity == nil {
		return
	}
	s.ledger.Remove(identity.Handle, sourceName)
	s.collector.RecordStressRemoved()
}

// Stage returns the plant's growth stage.
func (s *Sim) Stage(id uuid.UUID) (components.Stage, bool) {
	entity, ok := s.entityOf(id)
	if !ok {
		return 0, false
	}
	growth := s.growthMap.Get(entity)
	if growth == nil {
		return 0, false
	}
	return growth.Stage, true
}

// Health returns the plant's health fraction.
func (s *Sim) Health(id uuid.UUID) (float32, bool) {
	entity, ok := s.entityOf(id)
	if !ok {
		return 0, false
	}
	health := s.healthMap.Get(entity)
	if health == nil {
		return 0, false
	}
	return health.Fraction(), true
}

// PlantIDs returns the external ids of all live tracked plants.
func (s *Sim) PlantIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.tracked))
	for _, entity := range s.tracked {
		if !s.world.Alive(entity) {
			continue
		}
		identity := s.idMap.Get(entity)
		health := s.healthMap.Get(entity)
		if identity == nil || health == nil || !health.Alive {
			continue
		}
		out = append(out, identity.ID)
	}
	return out
}

// Stats aggregates the engine's operational counters for dashboards.
type Stats struct {
	Population int
	Tick       int64
	SliceSize  int
	Engine     genetics.Stats
	Perf       telemetry.PerfStats
}

// Stats returns current aggregate statistics.
func (s *Sim) Stats() Stats {
	return Stats{
		Population: s.population,
		Tick:       s.tick,
		SliceSize:  s.sliceSize,
		Engine:     s.expr.EngineStats(),
		Perf:       s.perf.Stats(),
	}
}
