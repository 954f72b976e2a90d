package genetics

import (
	"math"
	"math/rand"
	"testing"
)

func approx(a, b float32, tol float64) bool {
	return math.Abs(float64(a)-float64(b)) <= tol
}

func TestAllelePairExpress(t *testing.T) {
	tests := []struct {
		name string
		pair AllelePair
		want float32
	}{
		{
			"dominant allele wins",
			AllelePair{A: Allele{Value: 1, Dominance: 0.8}, B: Allele{Value: 0, Dominance: 0.2}},
			0.8,
		},
		{
			"equal dominance averages",
			AllelePair{A: Allele{Value: 0.2, Dominance: 0.5}, B: Allele{Value: 0.8, Dominance: 0.5}},
			0.5,
		},
		{
			"zero dominance falls back to the mean",
			AllelePair{A: Allele{Value: 0.2}, B: Allele{Value: 0.6}},
			0.4,
		},
		{
			"homozygous",
			AllelePair{A: Allele{Value: 0.7, Dominance: 0.9}, B: Allele{Value: 0.7, Dominance: 0.1}},
			0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pair.Express(); !approx(got, tt.want, 0.0001) {
				t.Errorf("Express() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewGenotypeNeutralFill(t *testing.T) {
	g := NewGenotype(nil)
	for i := 0; i < NumGenes; i++ {
		if got := g.Pair(Gene(i)).Express(); !approx(got, 0.5, 0.0001) {
			t.Errorf("gene %v expresses %v, want neutral 0.5", Gene(i), got)
		}
	}

	g = NewGenotype(map[Gene]AllelePair{
		GenePotency: {A: Allele{Value: 0.9, Dominance: 0.5}, B: Allele{Value: 0.9, Dominance: 0.5}},
	})
	if got := g.Pair(GenePotency).Express(); !approx(got, 0.9, 0.0001) {
		t.Errorf("explicit pair expresses %v, want 0.9", got)
	}
	if got := g.Pair(GeneHeight).Express(); !approx(got, 0.5, 0.0001) {
		t.Errorf("unspecified gene expresses %v, want neutral 0.5", got)
	}
}

func TestRandomGenotypeBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := Random(rng)
	for i := 0; i < NumGenes; i++ {
		p := g.Pair(Gene(i))
		for _, a := range []Allele{p.A, p.B} {
			if a.Value < 0 || a.Value > 1 {
				t.Errorf("gene %v allele value %v out of [0,1]", Gene(i), a.Value)
			}
			if a.Dominance < 0.3 || a.Dominance > 1 {
				t.Errorf("gene %v dominance %v out of [0.3,1]", Gene(i), a.Dominance)
			}
		}
	}
}

func TestCrossInheritsFromBothParents(t *testing.T) {
	low := AllelePair{A: Allele{Value: 0.2, Dominance: 0.5}, B: Allele{Value: 0.2, Dominance: 0.5}}
	high := AllelePair{A: Allele{Value: 0.8, Dominance: 0.5}, B: Allele{Value: 0.8, Dominance: 0.5}}

	mother := &Genotype{}
	father := &Genotype{}
	for i := 0; i < NumGenes; i++ {
		mother.pairs[i] = low
		father.pairs[i] = high
	}

	rng := rand.New(rand.NewSource(7))
	child := Cross(mother, father, 0, rng)

	for i := 0; i < NumGenes; i++ {
		p := child.Pair(Gene(i))
		if p.A.Value != 0.2 {
			t.Errorf("gene %v first allele = %v, want mother's 0.2", Gene(i), p.A.Value)
		}
		if p.B.Value != 0.8 {
			t.Errorf("gene %v second allele = %v, want father's 0.8", Gene(i), p.B.Value)
		}
	}
}

func TestCrossMutationStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	mother := Random(rng)
	father := Random(rng)

	child := Cross(mother, father, 1.0, rng) // every allele mutates
	for i := 0; i < NumGenes; i++ {
		p := child.Pair(Gene(i))
		for _, a := range []Allele{p.A, p.B} {
			if a.Value < 0 || a.Value > 1 {
				t.Errorf("mutated allele value %v out of [0,1]", a.Value)
			}
		}
	}
}

func TestGeneString(t *testing.T) {
	if GenePotency.String() != "potency" {
		t.Errorf("GenePotency.String() = %q", GenePotency.String())
	}
	if Gene(200).String() != "unknown" {
		t.Errorf("out-of-range gene should stringify as unknown")
	}
}
