// Package environment defines environmental conditions, the provider
// interface organisms sample each tick, and a noise-driven simulated
// provider for standalone runs.
package environment

import "math"

// Conditions is a point-in-time environment sample for one organism.
// Initialized distinguishes "never sampled" from a legitimate zero reading;
// consumers must treat an uninitialized sample as "use fallback", never as
// temperature = 0.
type Conditions struct {
	Temperature float32 // degrees C
	Humidity    float32 // relative humidity, percent
	Light       float32 // PPFD, umol/m2/s
	CO2         float32 // ppm
	Initialized bool
}

// IndoorDefault is the documented fallback used when no provider is
// available or a sample comes back uninitialized.
var IndoorDefault = Conditions{
	Temperature: 24.0,
	Humidity:    55.0,
	Light:       600.0,
	CO2:         900.0,
	Initialized: true,
}

// OrDefault returns c if it carries a real sample, IndoorDefault otherwise.
func (c Conditions) OrDefault() Conditions {
	if !c.Initialized {
		return IndoorDefault
	}
	return c
}

// VPD returns the vapor-pressure deficit in kPa, derived from temperature
// and relative humidity via the Tetens saturation formula.
func (c Conditions) VPD() float32 {
	t := float64(c.Temperature)
	svp := 0.6108 * math.Exp(17.27*t/(t+237.3))
	return float32(svp * (1.0 - float64(c.Humidity)/100.0))
}

// Signature returns a stable hash of the sample, quantized so that
// sub-threshold sensor jitter maps to the same cache key.
func (c Conditions) Signature() uint64 {
	if !c.Initialized {
		return 0
	}
	// FNV-1a over the quantized readings.
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for _, v := range [4]float32{c.Temperature, c.Humidity, c.Light, c.CO2} {
		q := uint64(int64(math.Round(float64(v) * 10)))
		for i := 0; i < 8; i++ {
			h ^= (q >> (8 * i)) & 0xff
			h *= prime
		}
	}
	return h
}

// Provider supplies environmental conditions for a location. Reads are
// synchronous and must return immediately; a provider with no data for a
// location returns an uninitialized Conditions.
type Provider interface {
	Conditions(location string) Conditions
}

// StaticProvider returns the same conditions for every location.
// Useful for tests and controlled-chamber setups.
type StaticProvider struct {
	Current Conditions
}

// Conditions implements Provider.
func (p *StaticProvider) Conditions(string) Conditions {
	return p.Current
}
