package species

import (
	"github.com/verdant-sim/cultivar/config"
	"github.com/verdant-sim/cultivar/environment"
)

// Fitness holds per-factor environmental fitness scores and their
// weighted combination. All values are clamped to [0,1].
type Fitness struct {
	Temperature float32
	Humidity    float32
	Light       float32
	CO2         float32
	Combined    float32
}

// FitnessParams are the tunable constants of the fitness curve. Factor
// weights must sum to 1; they are fixed constants, never derived from data.
type FitnessParams struct {
	TemperatureWeight float32
	HumidityWeight    float32
	LightWeight       float32
	CO2Weight         float32

	InRangeFalloff float32 // score loss at the tolerance-band edge
	OutOfRangeRate float32 // penalty slope per normalized out-of-range distance

	TemperatureFloor float32
	HumidityFloor    float32
	LightFloor       float32
	CO2Floor         float32
}

// ParamsFromConfig converts the loaded fitness configuration.
func ParamsFromConfig(fc *config.FitnessConfig) FitnessParams {
	return FitnessParams{
		TemperatureWeight: float32(fc.TemperatureWeight),
		HumidityWeight:    float32(fc.HumidityWeight),
		LightWeight:       float32(fc.LightWeight),
		CO2Weight:         float32(fc.CO2Weight),
		InRangeFalloff:    float32(fc.InRangeFalloff),
		OutOfRangeRate:    float32(fc.OutOfRangeRate),
		TemperatureFloor:  float32(fc.TemperatureFloor),
		HumidityFloor:     float32(fc.HumidityFloor),
		LightFloor:        float32(fc.LightFloor),
		CO2Floor:          float32(fc.CO2Floor),
	}
}

// Score computes per-factor and combined environmental fitness for a
// species under the given conditions. Pure function: no side effects,
// deterministic given inputs.
//
// A nil profile means "no data" and scores 1.0 everywhere; an
// uninitialized sample is resolved to the indoor default first.
func Score(p *Profile, cond environment.Conditions, params FitnessParams) Fitness {
	if p == nil {
		return Fitness{Temperature: 1, Humidity: 1, Light: 1, CO2: 1, Combined: 1}
	}
	cond = cond.OrDefault()

	f := Fitness{
		Temperature: factorScore(p.Temperature, cond.Temperature, params.InRangeFalloff, params.OutOfRangeRate, params.TemperatureFloor),
		Humidity:    factorScore(p.Humidity, cond.Humidity, params.InRangeFalloff, params.OutOfRangeRate, params.HumidityFloor),
		Light:       factorScore(p.Light, cond.Light, params.InRangeFalloff, params.OutOfRangeRate, params.LightFloor),
		CO2:         factorScore(p.CO2, cond.CO2, params.InRangeFalloff, params.OutOfRangeRate, params.CO2Floor),
	}

	combined := f.Temperature*params.TemperatureWeight +
		f.Humidity*params.HumidityWeight +
		f.Light*params.LightWeight +
		f.CO2*params.CO2Weight
	f.Combined = clamp01(combined)
	return f
}

// factorScore scores one reading against one tolerance band.
//
// In range: linear decay from 1.0 at the optimal point to (1 - falloff) at
// the nearest band edge, scaled by distance over half the band width.
// Out of range: starts from the in-range minimum and drops at outRate per
// band-width of excursion, floored so fitness degrades gracefully instead
// of hitting zero discontinuously.
func factorScore(band ToleranceBand, reading, falloff, outRate, floor float32) float32 {
	width := band.Width()
	if width <= 0 {
		// Degenerate band: all-or-nothing at the optimal point.
		if reading == band.Optimal {
			return 1
		}
		return floor
	}

	if band.Contains(reading) {
		dist := absf(reading - band.Optimal)
		ratio := dist / (width * 0.5)
		if ratio > 1 {
			ratio = 1
		}
		return clamp01(1 - falloff*ratio)
	}

	var excess float32
	if reading < band.Min {
		excess = band.Min - reading
	} else {
		excess = reading - band.Max
	}

	score := (1 - falloff) - outRate*(excess/width)
	if score < floor {
		score = floor
	}
	return clamp01(score)
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

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
