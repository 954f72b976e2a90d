// Package species holds per-species environmental tolerance profiles and
// the environmental fitness calculator that scores conditions against them.
package species

// ToleranceBand is a [Min, Max] tolerance range with an optimal point.
// Readings inside the band score near 1.0; readings outside degrade
// steeply but never discontinuously.
type ToleranceBand struct {
	Min     float32
	Optimal float32
	Max     float32
}

// Width returns the effective range width.
func (b ToleranceBand) Width() float32 {
	return b.Max - b.Min
}

// Contains reports whether a reading lies within the band.
func (b ToleranceBand) Contains(v float32) bool {
	return v >= b.Min && v <= b.Max
}

// Profile is the immutable per-species optimal-range data. Loaded once
// from the catalog and shared read-only across all organisms of the
// species.
type Profile struct {
	Strain string // catalog key
	Name   string // display name

	Temperature ToleranceBand // degrees C
	Humidity    ToleranceBand // percent RH
	Light       ToleranceBand // PPFD
	CO2         ToleranceBand // ppm

	// Base trait modifiers applied on top of genetic expression.
	BaseHeight  float32 // meters at maturity
	BasePotency float32 // THC fraction ceiling
	BaseCBD     float32 // CBD fraction ceiling
	BaseYield   float32 // relative yield multiplier

	FloweringDays int
}
