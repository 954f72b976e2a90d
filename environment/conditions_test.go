package environment

import (
	"math"
	"testing"
)

func TestOrDefault(t *testing.T) {
	var zero Conditions
	got := zero.OrDefault()
	if got != IndoorDefault {
		t.Errorf("uninitialized sample should fall back to the indoor default, got %+v", got)
	}

	real := Conditions{Temperature: 20, Humidity: 50, Light: 500, CO2: 800, Initialized: true}
	if real.OrDefault() != real {
		t.Error("initialized sample should pass through unchanged")
	}
}

func TestVPD(t *testing.T) {
	tests := []struct {
		name string
		cond Conditions
		want float64
		tol  float64
	}{
		{"saturated air", Conditions{Temperature: 25, Humidity: 100, Initialized: true}, 0, 0.001},
		{"25C half humidity", Conditions{Temperature: 25, Humidity: 50, Initialized: true}, 1.58, 0.05},
		{"20C 60 percent", Conditions{Temperature: 20, Humidity: 60, Initialized: true}, 0.94, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(tt.cond.VPD())
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("VPD = %v, want ~%v", got, tt.want)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	base := Conditions{Temperature: 24, Humidity: 55, Light: 600, CO2: 900, Initialized: true}

	if base.Signature() != base.Signature() {
		t.Error("signature must be stable for identical samples")
	}

	// Jitter below the 0.1 quantization step maps to the same key.
	jittered := base
	jittered.Temperature = 24.04
	if base.Signature() != jittered.Signature() {
		t.Error("sub-quantum jitter should not change the signature")
	}

	warmer := base
	warmer.Temperature = 25
	if base.Signature() == warmer.Signature() {
		t.Error("a real reading change should change the signature")
	}

	var zero Conditions
	if zero.Signature() != 0 {
		t.Errorf("uninitialized sample signature = %v, want 0", zero.Signature())
	}
}

func TestStaticProvider(t *testing.T) {
	want := Conditions{Temperature: 22, Humidity: 50, Light: 500, CO2: 800, Initialized: true}
	p := &StaticProvider{Current: want}

	if got := p.Conditions("anywhere"); got != want {
		t.Errorf("static provider returned %+v, want %+v", got, want)
	}
	if p.Conditions("room-a") != p.Conditions("room-b") {
		t.Error("static provider should ignore location")
	}
}
