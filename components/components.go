// Package components defines the plain data components stored per plant
// in the ECS world. Components carry no behavior beyond small accessors;
// all mutation happens in the simulation's tick systems.
package components

import "github.com/google/uuid"

// Identity bundles a plant's external id, stable arena handle, and
// catalog references.
type Identity struct {
	ID       uuid.UUID // external identity, exposed to collaborators
	Handle   uint32    // stable arena handle, used for cache keys and side tables
	Strain   string    // species catalog key
	Location string    // environment provider location key
}

// Health tracks a plant's vitality. Value is absolute; consumers
// normalize against Max.
type Health struct {
	Value float32
	Max   float32
	Alive bool
}

// Fraction returns health as a [0,1] fraction of maximum.
func (h Health) Fraction() float32 {
	if h.Max <= 0 {
		return 0
	}
	f := h.Value / h.Max
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Growth tracks stage progression.
type Growth struct {
	Stage    Stage
	Progress float32 // accumulated progress toward next stage, advance at >= 1.0
	Age      float32 // simulated seconds alive
}

// Vitals holds the per-tick engine outputs applied back onto the plant.
// All three are clamped to [0,1] at the component boundary.
type Vitals struct {
	Fitness    float32 // combined environmental fitness
	Stress     float32 // aggregate stress level
	Adaptation float32 // adaptation progress
}

// Size is the plant's physical dimensions in meters.
type Size struct {
	Height    float32
	Canopy    float32
	RootDepth float32
}
