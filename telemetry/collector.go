// Package telemetry accumulates per-window simulation events and rolling
// tick-performance samples, and exports both as CSV.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float32

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	expressionsComputed int
	cacheHits           int
	batchSlices         int
	singleSlices        int
	fallbacks           int
	stressApplied       int
	stressRemoved       int
	stageAdvances       int
	deaths              int
	harvests            int
	harvestGrams        float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int64(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordExpressions records n trait expression computations.
func (c *Collector) RecordExpressions(n int) {
	c.expressionsComputed += n
}

// RecordCacheHits records n expression cache hits.
func (c *Collector) RecordCacheHits(n int) {
	c.cacheHits += n
}

// RecordBatchSlice records a tick slice processed through the batched path.
func (c *Collector) RecordBatchSlice() {
	c.batchSlices++
}

// RecordSingleSlice records a tick slice processed plant-by-plant.
func (c *Collector) RecordSingleSlice() {
	c.singleSlices++
}

// RecordFallback records a plant update that fell back to a neutral result.
func (c *Collector) RecordFallback() {
	c.fallbacks++
}

// RecordStressApplied records an external stress application.
func (c *Collector) RecordStressApplied() {
	c.stressApplied++
}

// RecordStressRemoved records an external stress removal.
func (c *Collector) RecordStressRemoved() {
	c.stressRemoved++
}

// RecordStageAdvance records a growth-stage advancement.
func (c *Collector) RecordStageAdvance() {
	c.stageAdvances++
}

// RecordDeath records a plant death.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordHarvest records a harvest and its yield.
func (c *Collector) RecordHarvest(grams float64) {
	c.harvests++
	c.harvestGrams += grams
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces the window's stats and resets the counters.
func (c *Collector) Flush(currentTick int64, population, cacheSize int) WindowStats {
	stats := WindowStats{
		WindowStart:         c.windowStartTick,
		WindowEnd:           currentTick,
		SimTimeSec:          float64(currentTick) * float64(c.dt),
		Population:          population,
		ExpressionsComputed: c.expressionsComputed,
		CacheHits:           c.cacheHits,
		BatchSlices:         c.batchSlices,
		SingleSlices:        c.singleSlices,
		Fallbacks:           c.fallbacks,
		StressApplied:       c.stressApplied,
		StressRemoved:       c.stressRemoved,
		StageAdvances:       c.stageAdvances,
		Deaths:              c.deaths,
		Harvests:            c.harvests,
		HarvestGrams:        c.harvestGrams,
		CacheSize:           cacheSize,
	}

	c.windowStartTick = currentTick
	c.expressionsComputed = 0
	c.cacheHits = 0
	c.batchSlices = 0
	c.singleSlices = 0
	c.fallbacks = 0
	c.stressApplied = 0
	c.stressRemoved = 0
	c.stageAdvances = 0
	c.deaths = 0
	c.harvests = 0
	c.harvestGrams = 0

	return stats
}
