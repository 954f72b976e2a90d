package stress

import (
	"math"
	"testing"
)

func testLedger() *Ledger {
	return NewLedger(Params{
		RecoveryRate:         0.05,
		LowFitnessThreshold:  0.7,
		LowFitnessRate:       0.5,
		HighFitnessThreshold: 0.8,
		RegenRate:            0.5,
	})
}

func heatSource() Source {
	return Source{Name: "Heat", DamagePerSecond: 0.0020, Multiplier: 0.30, Category: Heat}
}

func approx(a, b float32, tol float64) bool {
	return math.Abs(float64(a)-float64(b)) <= tol
}

func TestApplyIdempotent(t *testing.T) {
	l := testLedger()
	src := heatSource()

	l.Apply(1, src, 0.5, 0)
	l.Apply(1, src, 0.8, 10)

	got := l.Stressors(1)
	if len(got) != 1 {
		t.Fatalf("re-applying the same source created %d entries, want 1", len(got))
	}
	if got[0].Intensity != 0.8 {
		t.Errorf("intensity = %v, want latest value 0.8", got[0].Intensity)
	}
	if got[0].StartAge != 0 {
		t.Errorf("start age = %v, re-apply should keep the original entry", got[0].StartAge)
	}
}

func TestApplyBounds(t *testing.T) {
	l := testLedger()

	l.Apply(1, heatSource(), 0, 0)
	l.Apply(1, heatSource(), -0.5, 0)
	if l.Count() != 0 {
		t.Error("non-positive intensity must be a no-op")
	}

	l.Apply(1, heatSource(), 5, 0)
	if got := l.Stressors(1); got[0].Intensity != 1 {
		t.Errorf("intensity = %v, want clamp to 1", got[0].Intensity)
	}
}

func TestApplyThenRemove(t *testing.T) {
	l := testLedger()
	l.Apply(1, heatSource(), 0.5, 0)
	l.Remove(1, "Heat")

	if got := l.Stressors(1); got != nil {
		t.Errorf("stressors after remove = %v, want none", got)
	}
	if l.Count() != 0 {
		t.Error("empty entries should be deleted outright")
	}

	// Removing again is harmless.
	l.Remove(1, "Heat")
}

func TestTickRecoveryDropsSpentStressors(t *testing.T) {
	l := testLedger()
	l.Apply(1, heatSource(), 0.1, 0)

	// Recovery at 0.05/s: two one-second ticks drive intensity to zero.
	l.Tick(1, 0.75, nil, 0, 1)
	got := l.Stressors(1)
	if len(got) != 1 || !approx(got[0].Intensity, 0.05, 0.0001) {
		t.Fatalf("after one tick: %+v, want single stressor at 0.05", got)
	}

	l.Tick(1, 0.75, nil, 1, 1)
	if l.Count() != 0 {
		t.Error("fully recovered stressor should be dropped, not kept at zero")
	}
}

func TestTickDamage(t *testing.T) {
	l := testLedger()
	l.Apply(1, heatSource(), 0.5, 0)

	res := l.Tick(1, 0.75, nil, 0, 1)
	if !approx(res.Damage, 0.5*0.0020, 1e-6) {
		t.Errorf("damage = %v, want intensity*dps*dt = 0.001", res.Damage)
	}
	if res.Regen != 0 {
		t.Errorf("regen = %v, fitness 0.75 is below the regen threshold", res.Regen)
	}
}

func TestTickLowFitnessSynthesizesStress(t *testing.T) {
	l := testLedger()
	env := heatSource()

	res := l.Tick(1, 0.5, &env, 0, 1)
	got := l.Stressors(1)
	if len(got) != 1 {
		t.Fatalf("low fitness should synthesize one stressor, got %d", len(got))
	}
	if !approx(got[0].Intensity, (1-0.5)*0.5, 0.0001) {
		t.Errorf("synthesized intensity = %v, want (1-fitness)*rate = 0.25", got[0].Intensity)
	}
	if res.Level <= 0 {
		t.Error("synthesized stress should register in the aggregate level")
	}

	// A second low-fitness tick grows the same entry instead of stacking.
	l.Tick(1, 0.5, &env, 1, 1)
	got = l.Stressors(1)
	if len(got) != 1 {
		t.Fatalf("synthesis must not stack entries, got %d", len(got))
	}
	if got[0].Intensity <= 0.25 {
		t.Errorf("intensity = %v, want growth past the first tick's 0.25", got[0].Intensity)
	}
}

func TestTickNoSynthesisWithoutEnvSource(t *testing.T) {
	l := testLedger()
	l.Tick(1, 0.2, nil, 0, 1)
	if l.Count() != 0 {
		t.Error("nil env source must disable synthesis")
	}
}

func TestTickHighFitnessRegen(t *testing.T) {
	l := testLedger()

	var total float32
	for i := 0; i < 10; i++ {
		res := l.Tick(1, 0.9, nil, float32(i), 1)
		if !approx(res.Regen, (0.9-0.8)*0.5, 0.0001) {
			t.Fatalf("tick %d regen = %v, want 0.05", i, res.Regen)
		}
		if res.Damage != 0 {
			t.Fatalf("tick %d damage = %v, want 0 with no stressors", i, res.Damage)
		}
		total += res.Regen
	}
	if !approx(total, 0.5, 0.001) {
		t.Errorf("total regen over 10 ticks = %v, want 0.5", total)
	}
}

func TestLevel(t *testing.T) {
	l := testLedger()

	if l.Level(1) != 0 {
		t.Error("level with no stressors should be 0")
	}

	l.Apply(1, heatSource(), 1, 0)
	if !approx(l.Level(1), 0.30, 0.0001) {
		t.Errorf("level = %v, want intensity*multiplier = 0.30", l.Level(1))
	}

	l.Apply(1, Source{Name: "Drought", DamagePerSecond: 0.0025, Multiplier: 0.35, Category: Drought}, 1, 0)
	l.Apply(1, Source{Name: "Cold", DamagePerSecond: 0.0015, Multiplier: 0.25, Category: Cold}, 1, 0)
	l.Apply(1, Source{Name: "LightBurn", DamagePerSecond: 0.0018, Multiplier: 0.25, Category: Light}, 1, 0)
	if l.Level(1) != 1 {
		t.Errorf("level = %v, want clamp to 1", l.Level(1))
	}
}

func TestDropIsolatesPlants(t *testing.T) {
	l := testLedger()
	l.Apply(1, heatSource(), 0.5, 0)
	l.Apply(2, heatSource(), 0.5, 0)

	l.Drop(1)
	if l.Level(1) != 0 {
		t.Error("dropped plant should have no stress")
	}
	if l.Level(2) == 0 {
		t.Error("dropping one plant must not touch another")
	}
}

func TestSourceCatalog(t *testing.T) {
	c := NewSourceCatalog()
	src, ok := c.Lookup("Heat")
	if !ok || src.Category != Heat {
		t.Errorf("built-in Heat lookup = %+v, %v", src, ok)
	}
	if _, ok := c.Lookup("Meteor"); ok {
		t.Error("unknown source should miss")
	}

	custom := Source{Name: "Heat", DamagePerSecond: 9, Multiplier: 1, Category: Heat}
	c = NewSourceCatalog(custom)
	src, _ = c.Lookup("Heat")
	if src.DamagePerSecond != 9 {
		t.Error("extras should override built-ins with the same name")
	}
}
