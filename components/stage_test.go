package components

import "testing"

func TestStageNextAdvancesOneStep(t *testing.T) {
	for s := Seed; s < Curing; s++ {
		if got := s.Next(); got != s+1 {
			t.Errorf("%v.Next() = %v, want %v", s, got, s+1)
		}
	}
	if got := Curing.Next(); got != Curing {
		t.Errorf("Curing.Next() = %v, the final stage must not advance", got)
	}
}

func TestStageCanAdvance(t *testing.T) {
	tests := []struct {
		name     string
		stage    Stage
		progress float32
		health   float32
		want     bool
	}{
		{"ready", Vegetative, 1.0, 0.9, true},
		{"progress just over", Seed, 1.2, 0.5, true},
		{"insufficient progress", Vegetative, 0.99, 0.9, false},
		{"health at threshold", Vegetative, 1.0, 0.3, false},
		{"health below threshold", Vegetative, 1.0, 0.1, false},
		{"final stage never advances", Curing, 5.0, 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stage.CanAdvance(tt.progress, tt.health, 0.3); got != tt.want {
				t.Errorf("CanAdvance(%v, %v) = %v, want %v", tt.progress, tt.health, got, tt.want)
			}
		})
	}
}

func TestStageYieldModifiers(t *testing.T) {
	if got := Harvestable.YieldModifier(); got != 1.0 {
		t.Errorf("Harvestable yield = %v, want 1.0", got)
	}

	// Pre-viable and post-harvest stages yield nothing.
	for _, s := range []Stage{Seed, Germination, Seedling, Harvested, Drying, Curing} {
		if got := s.YieldModifier(); got != 0 {
			t.Errorf("%v yield = %v, want 0", s, got)
		}
	}

	// Earlier pulls yield progressively less.
	prev := Harvestable.YieldModifier()
	for _, s := range []Stage{Ripening, Flowering, PreFlowering, Vegetative} {
		got := s.YieldModifier()
		if got >= prev {
			t.Errorf("%v yield %v should be below the later stage's %v", s, got, prev)
		}
		prev = got
	}
}

func TestStageTerminal(t *testing.T) {
	for s := Seed; s <= Harvestable; s++ {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
	for _, s := range []Stage{Harvested, Drying, Curing} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
}

func TestStageGrowthRates(t *testing.T) {
	for s := Seed; s < Harvestable; s++ {
		if s.BaseGrowthRate() <= 0 {
			t.Errorf("%v growth rate = %v, pre-harvest stages must progress", s, s.BaseGrowthRate())
		}
	}
	if Harvestable.BaseGrowthRate() != 0 {
		t.Error("Harvestable waits for harvest, not a growth timer")
	}
}

func TestStageString(t *testing.T) {
	if Flowering.String() != "flowering" {
		t.Errorf("Flowering.String() = %q", Flowering.String())
	}
	if Stage(250).String() != "unknown" {
		t.Error("out-of-range stage should stringify as unknown")
	}
}

func TestHealthFraction(t *testing.T) {
	tests := []struct {
		name   string
		health Health
		want   float32
	}{
		{"full", Health{Value: 1, Max: 1}, 1},
		{"half", Health{Value: 0.5, Max: 1}, 0.5},
		{"scaled max", Health{Value: 30, Max: 60}, 0.5},
		{"zero max", Health{Value: 1, Max: 0}, 0},
		{"negative value", Health{Value: -1, Max: 1}, 0},
		{"over max", Health{Value: 2, Max: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.health.Fraction(); got != tt.want {
				t.Errorf("Fraction() = %v, want %v", got, tt.want)
			}
		})
	}
}
