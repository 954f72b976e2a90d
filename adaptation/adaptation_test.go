package adaptation

import (
	"math"
	"testing"
)

func testTracker() *Tracker {
	return NewTracker(Params{Rate: 0.1, DeclineFactor: 0.5})
}

func approx(a, b float32, tol float64) bool {
	return math.Abs(float64(a)-float64(b)) <= tol
}

func TestUpdateBlendsTowardFitness(t *testing.T) {
	tr := testTracker()

	got := tr.Update(1, 1.0, 1)
	if !approx(got, 0.1, 0.0001) {
		t.Errorf("first update = %v, want 0 + (1-0)*0.1 = 0.1", got)
	}

	got = tr.Update(1, 1.0, 1)
	if !approx(got, 0.19, 0.0001) {
		t.Errorf("second update = %v, want 0.1 + 0.9*0.1 = 0.19", got)
	}
}

func TestUpdateAsymmetry(t *testing.T) {
	tr := testTracker()

	tr.Seed(1, 0.5)
	tr.Seed(2, 0.5)

	up := tr.Update(1, 1.0, 1) - 0.5
	down := 0.5 - tr.Update(2, 0.0, 1)

	if !approx(up, 0.05, 0.0001) {
		t.Errorf("improvement step = %v, want 0.5*0.1 = 0.05", up)
	}
	if !approx(down, 0.025, 0.0001) {
		t.Errorf("decline step = %v, want half rate = 0.025", down)
	}
	if down >= up {
		t.Errorf("decline %v must be slower than improvement %v", down, up)
	}
}

func TestUpdateConverges(t *testing.T) {
	tr := testTracker()
	tr.Seed(1, 0.2)

	var prev float32 = 0.2
	for i := 0; i < 200; i++ {
		got := tr.Update(1, 0.9, 1)
		if got < prev-1e-6 {
			t.Fatalf("progress regressed from %v to %v while fitness is above it", prev, got)
		}
		prev = got
	}
	if !approx(prev, 0.9, 0.01) {
		t.Errorf("progress after convergence = %v, want ~0.9", prev)
	}
}

func TestSeedClamps(t *testing.T) {
	tr := testTracker()

	tr.Seed(1, 1.5)
	if tr.Progress(1) != 1 {
		t.Errorf("seed above 1 = %v, want clamp to 1", tr.Progress(1))
	}
	tr.Seed(1, -0.5)
	if tr.Progress(1) != 0 {
		t.Errorf("seed below 0 = %v, want clamp to 0", tr.Progress(1))
	}
}

func TestDrop(t *testing.T) {
	tr := testTracker()
	tr.Seed(1, 0.7)
	tr.Drop(1)
	if tr.Progress(1) != 0 {
		t.Error("dropped plant should read zero progress")
	}
}
