package environment

import (
	"math"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// SimulatedProvider synthesizes plausible grow-room conditions from a
// diurnal cycle plus low-frequency noise drift. Each location gets its own
// noise offset so rooms drift independently. Advance the clock once per
// tick; samples are pure reads of the current clock.
type SimulatedProvider struct {
	temp  opensimplex.Noise
	humid opensimplex.Noise
	light opensimplex.Noise
	co2   opensimplex.Noise

	baseline   Conditions
	scale      float64 // noise frequency
	octaves    int
	dayLength  float64 // simulated seconds per day
	drift      float64 // fractional drift amplitude
	clock      float64 // simulated seconds elapsed
	locOffsets map[string]float64
	mu         sync.Mutex
}

// NewSimulatedProvider creates a provider seeded for reproducible runs.
// Baseline conditions anchor the diurnal cycle; drift is the fraction of
// each baseline value the noise layer may add or remove.
func NewSimulatedProvider(seed int64, baseline Conditions, scale float64, octaves int, dayLength, drift float64) *SimulatedProvider {
	if octaves < 1 {
		octaves = 1
	}
	if dayLength <= 0 {
		dayLength = 1440
	}
	return &SimulatedProvider{
		// Independent noise layers per factor, offset seeds as in layered
		// terrain generation.
		temp:       opensimplex.NewNormalized(seed),
		humid:      opensimplex.NewNormalized(seed + 1),
		light:      opensimplex.NewNormalized(seed + 2),
		co2:        opensimplex.NewNormalized(seed + 3),
		baseline:   baseline.OrDefault(),
		scale:      scale,
		octaves:    octaves,
		dayLength:  dayLength,
		drift:      drift,
		locOffsets: make(map[string]float64),
	}
}

// Advance moves the simulated clock forward by dt seconds.
func (p *SimulatedProvider) Advance(dt float64) {
	p.clock += dt
}

// Conditions implements Provider.
func (p *SimulatedProvider) Conditions(location string) Conditions {
	off := p.locationOffset(location)
	t := p.clock * p.scale

	// Diurnal phase in [0,1): 0 = lights-on.
	phase := math.Mod(p.clock/p.dayLength, 1.0)
	daylight := 0.5 + 0.5*math.Sin(2*math.Pi*phase-math.Pi/2)

	b := p.baseline
	drift := p.drift

	temperature := float64(b.Temperature) * (1 + drift*(p.octave(p.temp, t, off)*2-1)) // noise in [-1,1]
	temperature += 2.0 * (daylight - 0.5)                                              // warmer under lights

	humidity := float64(b.Humidity) * (1 + drift*(p.octave(p.humid, t, off)*2-1))
	humidity = clampF(humidity, 0, 100)

	light := float64(b.Light) * daylight * (1 + 0.5*drift*(p.octave(p.light, t, off)*2-1))
	if light < 0 {
		light = 0
	}

	co2 := float64(b.CO2) * (1 + drift*(p.octave(p.co2, t, off)*2-1))
	if co2 < 0 {
		co2 = 0
	}

	return Conditions{
		Temperature: float32(temperature),
		Humidity:    float32(humidity),
		Light:       float32(light),
		CO2:         float32(co2),
		Initialized: true,
	}
}

// octave layers multiple noise frequencies into fractal drift in [0,1].
func (p *SimulatedProvider) octave(noise opensimplex.Noise, t, off float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	frequency := 1.0

	for i := 0; i < p.octaves; i++ {
		total += noise.Eval2(t*frequency, off) * amplitude
		maxVal += amplitude
		amplitude *= 0.5
		frequency *= 2
	}

	return total / maxVal
}

// locationOffset assigns each location a stable noise-plane row.
func (p *SimulatedProvider) locationOffset(location string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if off, ok := p.locOffsets[location]; ok {
		return off
	}
	off := float64(len(p.locOffsets)) * 17.31
	p.locOffsets[location] = off
	return off
}

func clampF(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
