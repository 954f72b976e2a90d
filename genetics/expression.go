package genetics

import (
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/verdant-sim/cultivar/environment"
	"github.com/verdant-sim/cultivar/species"
	"github.com/verdant-sim/cultivar/stress"
)

// StressFactor is one named, categorized stress signal in an expression
// result. Downstream plant-state consumers dispatch on the category, so
// the taxonomy must match the stress package exactly.
type StressFactor struct {
	Category stress.Category
	Name     string
	Severity float32 // [0,1]
}

// StressResponse is the stress sub-record embedded in every expression
// result.
type StressResponse struct {
	Level            float32 // aggregate stress level, [0,1]
	Factors          []StressFactor
	AdaptiveCapacity float32 // [0,1], adaptation scaled by the resilience locus
}

// Result is a phenotype expression: how strongly the genotype expresses
// each trait under the sampled environment.
//
// Trait values are multipliers around 1.0 baseline and are deliberately
// not hard-clamped: a height expression above 1 drives faster-than-baseline
// growth downstream. OverallFitness and everything in StressResponse are
// clamped to [0,1] at this boundary.
type Result struct {
	Height  float32
	Potency float32 // THC expression
	CBD     float32
	Yield   float32

	OverallFitness float32
	Stress         StressResponse

	FromCache bool
}

// Request is one expression evaluation: a plant's genotype plus its
// current environment sample and derived per-factor fitness.
type Request struct {
	Handle     uint32 // arena handle, part of the cache key
	Genotype   *Genotype
	Conditions environment.Conditions
	Fitness    species.Fitness
	Stressors  []stress.Stressor
	Adaptation float32
}

// Params configure the expression engine.
type Params struct {
	Epistasis      bool
	Pleiotropy     bool
	CacheWindowSec float64
	TraitWeights   [NumTraits]float32 // weights for the overall-fitness combination
	Workers        int                // batch workers, 0 = GOMAXPROCS
}

// Stats are the engine's aggregate operational counters.
type Stats struct {
	Calculations uint64
	CacheHits    uint64
	Batches      uint64
	Fallbacks    uint64 // worker-pool computations replaced by a neutral result
	AvgCalc      time.Duration
	AvgBatch     time.Duration
	CacheSize    int
}

// Engine computes phenotype expressions with a coarse time-windowed
// result cache and an optional parallel batch path.
//
// The engine is driven single-threaded by the orchestrator; the internal
// batch workers only ever touch disjoint request chunks, and all cache
// reads and writes happen on the caller's goroutine.
type Engine struct {
	params     Params
	weightCols [NumTraits]blas32.Vector
	weightSums [NumTraits]float32
	traitWSum  float32
	cache      *resultCache
	pool       *batchPool

	calcCount  atomic.Uint64
	cacheHits  atomic.Uint64
	batchCount atomic.Uint64
	fallbacks  atomic.Uint64
	calcNs     atomic.Int64
	batchNs    atomic.Int64
}

// NewEngine creates an expression engine.
func NewEngine(params Params) *Engine {
	e := &Engine{
		params: params,
		cache:  newResultCache(params.CacheWindowSec),
	}

	cols, sums := buildWeightColumns(params.Pleiotropy)
	for t := 0; t < NumTraits; t++ {
		e.weightCols[t] = blas32.Vector{N: NumGenes, Inc: 1, Data: cols[t]}
		e.weightSums[t] = sums[t]
	}

	for _, w := range params.TraitWeights {
		e.traitWSum += w
	}
	if e.traitWSum <= 0 {
		e.traitWSum = 1
	}

	e.pool = newBatchPool(params.Workers)
	return e
}

// Close stops the engine's batch workers.
func (e *Engine) Close() {
	e.pool.stop()
}

// Evaluate computes one plant's expression at sim-time now (seconds).
// Results are served from the cache while the shared refresh window is
// open; a miss recomputes and re-opens the window for all keys.
func (e *Engine) Evaluate(req Request, now float64) Result {
	key := cacheKey{handle: req.Handle, envSig: req.Conditions.Signature()}
	if res, ok := e.cache.get(key, now); ok {
		e.cacheHits.Add(1)
		res.FromCache = true
		return res
	}

	start := time.Now()
	res := e.compute(&req)
	e.calcNs.Add(time.Since(start).Nanoseconds())
	e.calcCount.Add(1)

	e.cache.put(key, res, now)
	return res
}

// compute is the cache-free evaluation shared by the single and batch
// paths. Batch results must stay equivalent to sequential evaluation, so
// any formula change here covers both.
func (e *Engine) compute(req *Request) Result {
	if req.Genotype == nil {
		return e.neutralResult(req)
	}

	var expr [NumGenes]float32
	req.Genotype.expressed(&expr)

	exprVec := blas32.Vector{N: NumGenes, Inc: 1, Data: expr[:]}
	var raw [NumTraits]float32
	for t := 0; t < NumTraits; t++ {
		if e.weightSums[t] > 0 {
			raw[t] = blas32.Dot(exprVec, e.weightCols[t]) / e.weightSums[t]
		}
	}

	if e.params.Epistasis {
		applyEpistasis(&expr, &raw)
	}

	fit := req.Fitness
	res := Result{
		// 2 * raw * envFactor: a neutral genotype (raw 0.5) in a perfect
		// environment expresses exactly 1.0 baseline.
		Height:  2 * raw[TraitHeight] * envFactor((fit.Temperature+fit.Light)*0.5),
		Potency: 2 * raw[TraitPotency] * envFactor((fit.Light+fit.CO2)*0.5),
		CBD:     2 * raw[TraitCBD] * envFactor((fit.Temperature+fit.Humidity)*0.5),
		Yield:   2 * raw[TraitYield] * envFactor(fit.Combined),
	}

	res.Stress = e.stressResponse(req, expr[GeneResilience])

	// Stress dampens the reproductive traits before the overall score.
	damp := 1 - 0.3*res.Stress.Level
	res.Potency *= damp
	res.Yield *= damp

	w := &e.params.TraitWeights
	res.OverallFitness = clamp01((res.Height*w[TraitHeight] +
		res.Potency*w[TraitPotency] +
		res.CBD*w[TraitCBD] +
		res.Yield*w[TraitYield]) / e.traitWSum)

	return res
}

// computeGuarded is compute with per-request panic containment for the
// worker-pool path, where the orchestrator's recover cannot reach a worker
// goroutine. A failed plant gets a neutral result and a counter bump
// instead of taking the slice down. The literal avoids re-running
// stressResponse over whatever input caused the panic.
func (e *Engine) computeGuarded(req *Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.fallbacks.Add(1)
			res = Result{
				Height: 1, Potency: 1, CBD: 1, Yield: 1,
				OverallFitness: clamp01(req.Fitness.Combined),
			}
		}
	}()
	return e.compute(req)
}

// neutralResult is the fallback for plants without a genotype: every trait
// at baseline, fitness following the environment alone.
func (e *Engine) neutralResult(req *Request) Result {
	res := Result{
		Height:  1,
		Potency: 1,
		CBD:     1,
		Yield:   1,
	}
	res.Stress = e.stressResponse(req, 0.5)
	res.OverallFitness = clamp01(req.Fitness.Combined * (1 - 0.3*res.Stress.Level))
	return res
}

// stressResponse folds the plant's active stressors into named,
// categorized factors.
func (e *Engine) stressResponse(req *Request, resilienceExpr float32) StressResponse {
	var level float32
	var byCategory [stress.NumCategories]float32
	for _, s := range req.Stressors {
		if !s.Active || s.Intensity <= 0 {
			continue
		}
		level += s.Intensity * s.Source.Multiplier
		// Collaborator-defined sources may sit outside the category
		// taxonomy; they still weigh on the level but get no named factor.
		if int(s.Source.Category) < stress.NumCategories {
			byCategory[s.Source.Category] += s.Intensity
		}
	}

	resp := StressResponse{
		Level:            clamp01(level),
		AdaptiveCapacity: clamp01(req.Adaptation * (0.5 + 0.5*resilienceExpr)),
	}

	for c := 0; c < stress.NumCategories; c++ {
		if byCategory[c] <= 0 {
			continue
		}
		cat := stress.Category(c)
		resp.Factors = append(resp.Factors, StressFactor{
			Category: cat,
			Name:     cat.String(),
			Severity: clamp01(byCategory[c]),
		})
	}
	return resp
}

// envFactor maps a [0,1] fitness score into the [0.5,1] environment
// multiplier applied to raw genetic expression.
func envFactor(score float32) float32 {
	return 0.5 + 0.5*clamp01(score)
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cache.clear()
}

// CompactCache rebuilds the cache when it has outgrown maxEntries.
func (e *Engine) CompactCache(maxEntries int) {
	e.cache.compact(maxEntries)
}

// CacheSize returns the number of cached results.
func (e *Engine) CacheSize() int {
	return e.cache.len()
}

// EngineStats returns the engine's aggregate counters.
func (e *Engine) EngineStats() Stats {
	s := Stats{
		Calculations: e.calcCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		Batches:      e.batchCount.Load(),
		Fallbacks:    e.fallbacks.Load(),
		CacheSize:    e.cache.len(),
	}
	if s.Calculations > 0 {
		s.AvgCalc = time.Duration(e.calcNs.Load() / int64(s.Calculations))
	}
	if s.Batches > 0 {
		s.AvgBatch = time.Duration(e.batchNs.Load() / int64(s.Batches))
	}
	return s
}
