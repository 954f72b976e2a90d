package sim

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/verdant-sim/cultivar/environment"
	"github.com/verdant-sim/cultivar/genetics"
	"github.com/verdant-sim/cultivar/species"
	"github.com/verdant-sim/cultivar/stress"
	"github.com/verdant-sim/cultivar/telemetry"
)

// plantRow carries one plant's state across the tick's phases.
type plantRow struct {
	entity  ecs.Entity
	handle  uint32
	id      uuid.UUID
	age     float32
	profile *species.Profile
	cond    environment.Conditions
	fit     species.Fitness
	ledger  stress.TickResult
	adapt   float32
	result  genetics.Result
	failed  bool
}

// Tick advances the simulation by dt seconds, processing one bounded
// round-robin slice of the tracked population.
func (s *Sim) Tick(dt float32) {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseEnvironment)
	if adv, ok := s.provider.(interface{ Advance(float64) }); ok {
		adv.Advance(float64(dt))
	}

	rows, wrapped := s.gatherSlice()
	for i := range rows {
		rows[i].cond = s.sample(rows[i].entity)
	}

	s.perf.StartPhase(telemetry.PhaseFitness)
	for i := range rows {
		rows[i].fit = species.Score(rows[i].profile, rows[i].cond, s.fitParams)
	}

	s.perf.StartPhase(telemetry.PhaseStress)
	for i := range rows {
		r := &rows[i]
		envSrc := s.envStressSource(r.profile, r.cond, r.fit)
		r.ledger = s.ledger.Tick(r.handle, r.fit.Combined, envSrc, r.age, dt)
	}

	s.perf.StartPhase(telemetry.PhaseAdaptation)
	for i := range rows {
		rows[i].adapt = s.adapt.Update(rows[i].handle, rows[i].fit.Combined, dt)
	}

	s.perf.StartPhase(telemetry.PhaseExpression)
	s.expressSlice(rows)

	s.perf.StartPhase(telemetry.PhaseApply)
	for i := range rows {
		s.applyRow(&rows[i], dt)
	}

	s.perf.StartPhase(telemetry.PhaseGrowth)
	for i := range rows {
		s.advanceGrowth(&rows[i], dt)
	}

	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.cleanup()
	s.maintainCache(wrapped)

	s.perf.EndTick()

	s.tick++
	s.simTime += float64(dt)

	s.adjustSliceSize()
	s.flushStats()
}

// gatherSlice picks the next round-robin slice of live plants. The whole
// population is never processed in one tick; the cursor resumes where the
// previous tick stopped. Returns whether the cursor wrapped (one full
// pass over the population completed).
func (s *Sim) gatherSlice() ([]plantRow, bool) {
	n := len(s.tracked)
	if n == 0 {
		return nil, false
	}

	limit := s.sliceSize
	if limit > n {
		limit = n
	}

	rows := make([]plantRow, 0, limit)
	wrapped := false
	for scanned := 0; scanned < n && len(rows) < limit; scanned++ {
		if s.cursor >= len(s.tracked) {
			s.cursor = 0
			wrapped = true
		}
		entity := s.tracked[s.cursor]
		s.cursor++

		// Inactive or destroyed plants mid-slice are skipped, not faults.
		if !s.world.Alive(entity) {
			continue
		}
		identity := s.idMap.Get(entity)
		health := s.healthMap.Get(entity)
		growth := s.growthMap.Get(entity)
		if identity == nil || health == nil || !health.Alive {
			continue
		}

		rows = append(rows, plantRow{
			entity:  entity,
			handle:  identity.Handle,
			id:      identity.ID,
			age:     growth.Age,
			profile: s.catalog.Lookup(identity.Strain),
		})
	}
	if s.cursor >= len(s.tracked) {
		s.cursor = 0
		wrapped = true
	}
	return rows, wrapped
}

// sample reads the plant's current conditions, falling back to the indoor
// default when no provider exists or the sample comes back uninitialized.
func (s *Sim) sample(entity ecs.Entity) environment.Conditions {
	if s.provider == nil {
		return environment.IndoorDefault
	}
	identity := s.idMap.Get(entity)
	if identity == nil {
		return environment.IndoorDefault
	}
	return s.provider.Conditions(identity.Location).OrDefault()
}

// expressSlice runs trait expression for the slice: the batched engine
// path above the size threshold, plant-by-plant otherwise. A panic while
// computing one plant substitutes a neutral result for that plant only.
func (s *Sim) expressSlice(rows []plantRow) {
	reqs := make([]genetics.Request, len(rows))
	for i := range rows {
		r := &rows[i]
		reqs[i] = genetics.Request{
			Handle:     r.handle,
			Genotype:   s.genotypes[r.handle],
			Conditions: r.cond,
			Fitness:    r.fit,
			Stressors:  s.ledger.Stressors(r.handle),
			Adaptation: r.adapt,
		}
	}

	if len(rows) > s.cfg.Batch.BatchThreshold {
		if s.batchExpress(rows, reqs) {
			s.collector.RecordBatchSlice()
			return
		}
		// Batch path failed; fall through to the guarded single path.
	}

	for i := range rows {
		s.singleExpress(&rows[i], &reqs[i])
	}
	s.collector.RecordSingleSlice()
}

// batchExpress runs the batched engine path. Returns false if the batch
// panicked, in which case the caller retries plant-by-plant so one bad
// plant cannot take down the slice.
func (s *Sim) batchExpress(rows []plantRow, reqs []genetics.Request) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("batch expression panicked, retrying individually", "panic", r)
			ok = false
		}
	}()

	results := s.expr.EvaluateBatch(reqs, s.simTime)
	hits := 0
	for i := range rows {
		rows[i].result = results[i]
		if results[i].FromCache {
			hits++
		}
	}
	s.collector.RecordExpressions(len(rows) - hits)
	s.collector.RecordCacheHits(hits)
	return true
}

// singleExpress evaluates one plant, substituting a neutral result if the
// computation panics. The fallback is logged and counted so silent
// neutral ticks stay visible in diagnostics.
func (s *Sim) singleExpress(row *plantRow, req *genetics.Request) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("expression failed, using neutral result",
				"plant", row.id, "panic", r)
			row.result = genetics.Result{
				Height: 1, Potency: 1, CBD: 1, Yield: 1,
				OverallFitness: row.fit.Combined,
			}
			row.failed = true
			s.collector.RecordFallback()
		}
	}()

	row.result = s.expr.Evaluate(*req, s.simTime)
	if row.result.FromCache {
		s.collector.RecordCacheHits(1)
	} else {
		s.collector.RecordExpressions(1)
	}
}

// applyRow writes the tick's results back onto the plant's components.
// Fitness, stress, and adaptation are clamped at this boundary.
func (s *Sim) applyRow(row *plantRow, dt float32) {
	vitals := s.vitalsMap.Get(row.entity)
	health := s.healthMap.Get(row.entity)
	if vitals == nil || health == nil || !health.Alive {
		return
	}

	vitals.Fitness = clamp01(row.fit.Combined)
	vitals.Stress = clamp01(row.ledger.Level)
	vitals.Adaptation = clamp01(row.adapt)

	health.Value -= row.ledger.Damage * health.Max
	health.Value += row.ledger.Regen * health.Max
	if health.Value > health.Max {
		health.Value = health.Max
	}
	if health.Value <= 0 {
		health.Value = 0
		health.Alive = false
		s.collector.RecordDeath()
		slog.Debug("plant died", "plant", row.id)
	}

	s.lastExpr[row.handle] = row.result
}

// advanceGrowth accumulates stage progress and advances the stage when
// progress and health allow. Stages advance one step at a time, never
// skip, and never regress.
func (s *Sim) advanceGrowth(row *plantRow, dt float32) {
	growth := s.growthMap.Get(row.entity)
	health := s.healthMap.Get(row.entity)
	size := s.sizeMap.Get(row.entity)
	if growth == nil || health == nil || !health.Alive {
		return
	}

	growth.Age += dt

	// Base rate is per simulated hour; height expression above 1 drives
	// faster-than-baseline growth (intentionally unclamped upstream).
	rate := growth.Stage.BaseGrowthRate() / 3600 * dt
	rate *= s.globalGrowthMod * row.result.Height * (0.5 + 0.5*row.result.OverallFitness)
	growth.Progress += rate

	if size != nil && !growth.Stage.Terminal() {
		if row.profile != nil {
			heightGain := row.profile.BaseHeight * rate * 0.5
			size.Height += heightGain * row.result.Height
			size.Canopy += heightGain * 0.4
			size.RootDepth += heightGain * 0.3
		}
	}

	minHealth := float32(s.cfg.Growth.MinHealthToAdvance)
	if growth.Stage.CanAdvance(growth.Progress, health.Fraction(), minHealth) {
		growth.Stage = growth.Stage.Next()
		growth.Progress = 0
		s.collector.RecordStageAdvance()
		slog.Debug("stage advanced", "plant", row.id, "stage", growth.Stage.String())
	}
}

// cleanup removes dead plants from the tracked list and the world.
func (s *Sim) cleanup() {
	kept := s.tracked[:0]
	for _, entity := range s.tracked {
		if !s.world.Alive(entity) {
			continue
		}
		health := s.healthMap.Get(entity)
		if health == nil || !health.Alive {
			s.remove(entity)
			continue
		}
		kept = append(kept, entity)
	}
	s.tracked = kept
	if s.cursor > len(s.tracked) {
		s.cursor = 0
	}
}

// maintainCache bounds expression-cache growth: a periodic full clear,
// plus an occasional broader optimization pass after a full population
// cycle.
func (s *Sim) maintainCache(fullPass bool) {
	if s.simTime-s.lastCacheClear >= s.cfg.Genetics.CacheClearSec {
		s.expr.ClearCache()
		s.lastCacheClear = s.simTime
		slog.Debug("expression cache cleared", "sim_time", s.simTime)
	}

	if fullPass && s.rng.Float64() < s.cfg.Batch.OptimizeChance {
		s.expr.CompactCache(s.cfg.Simulation.MaxOrganisms)
		runtime.GC()
	}
}

// adjustSliceSize tunes the per-tick slice from the rolling tick cost:
// over budget halves it down to the floor, comfortably under budget
// doubles it up to the configured cap.
func (s *Sim) adjustSliceSize() {
	avg := s.perf.AvgTick()
	if avg == 0 {
		return
	}

	budget := time.Duration(s.cfg.Batch.FrameBudgetMS * float64(time.Millisecond))
	maxSize := s.cfg.Batch.MaxSize
	if s.cfg.Performance.HighCapacity {
		maxSize = s.cfg.Batch.MaxSizeHigh
	}

	switch {
	case avg > budget:
		s.sliceSize /= 2
		if s.sliceSize < s.cfg.Batch.MinSize {
			s.sliceSize = s.cfg.Batch.MinSize
		}
	case float64(avg) < float64(budget)*s.cfg.Batch.ComfortFraction:
		s.sliceSize *= 2
		if s.sliceSize > maxSize {
			s.sliceSize = maxSize
		}
	}
}

// envStressSource categorizes poor conditions into the stress source the
// ledger synthesizes from: the worst-scoring factor picks the category,
// the reading's side of the optimal point picks heat vs cold and drought
// vs flood.
func (s *Sim) envStressSource(profile *species.Profile, cond environment.Conditions, fit species.Fitness) *stress.Source {
	if profile == nil {
		return nil
	}

	worst := fit.Temperature
	name := "Heat"
	if cond.Temperature < profile.Temperature.Optimal {
		name = "Cold"
	}
	if fit.Humidity < worst {
		worst = fit.Humidity
		if cond.Humidity < profile.Humidity.Optimal {
			name = "Drought"
		} else {
			name = "Overwatering"
		}
	}
	if fit.Light < worst {
		worst = fit.Light
		if cond.Light < profile.Light.Optimal {
			name = "LowLight"
		} else {
			name = "LightBurn"
		}
	}
	if fit.CO2 < worst {
		worst = fit.CO2
		name = "StaleAir"
	}

	src, ok := s.sources.Lookup(name)
	if !ok {
		return nil
	}
	return &src
}

// flushStats logs and exports the current stats window when due.
func (s *Sim) flushStats() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.population, s.expr.CacheSize())
	if s.logStats {
		slog.Info("window", "stats", stats)
		slog.Info("perf", "stats", s.perf.Stats())
	}
	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("telemetry write failed", "error", err)
		}
		if err := s.output.WritePerf(s.perf.Stats(), s.tick); err != nil {
			slog.Error("perf write failed", "error", err)
		}
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
