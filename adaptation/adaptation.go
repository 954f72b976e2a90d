// Package adaptation smooths noisy instantaneous fitness into a slow
// per-plant adaptation signal. Blending is deliberately asymmetric:
// adaptation toward improving conditions runs at full rate, adaptation
// toward declining conditions at a reduced rate, giving long-lived
// consumers hysteresis against environment noise.
package adaptation

// Params are the tracker's tunable constants.
type Params struct {
	Rate          float32 // blend rate per second toward improved fitness
	DeclineFactor float32 // rate multiplier when fitness is below the baseline
}

// Tracker holds per-plant adaptation progress keyed by arena handle.
type Tracker struct {
	params   Params
	progress map[uint32]float32
}

// NewTracker creates an empty tracker.
func NewTracker(params Params) *Tracker {
	return &Tracker{
		params:   params,
		progress: make(map[uint32]float32),
	}
}

// Update blends the plant's adaptation progress toward the instantaneous
// fitness for the current tick and returns the new progress, clamped to
// [0,1]. Improvement blends at rate*dt; decline at rate*declineFactor*dt.
func (t *Tracker) Update(handle uint32, fitness, dt float32) float32 {
	current := t.progress[handle]

	rate := t.params.Rate * dt
	if fitness < current {
		rate *= t.params.DeclineFactor
	}

	next := current + (fitness-current)*rate
	if next < 0 {
		next = 0
	}
	if next > 1 {
		next = 1
	}
	t.progress[handle] = next
	return next
}

// Progress returns the plant's current adaptation progress.
func (t *Tracker) Progress(handle uint32) float32 {
	return t.progress[handle]
}

// Seed initializes a plant's baseline, typically to its first measured
// fitness so newly planted organisms don't start from zero.
func (t *Tracker) Seed(handle uint32, value float32) {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	t.progress[handle] = value
}

// Drop removes all state for a plant.
func (t *Tracker) Drop(handle uint32) {
	delete(t.progress, handle)
}
