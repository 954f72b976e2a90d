// Package genetics implements genotypes and the trait expression engine:
// genotype plus environment in, phenotype expression out, with a coarse
// time-windowed result cache and a batched evaluation path for scale.
package genetics

import "math/rand"

// Gene identifies a locus. Genes are a closed set; the ordinal indexes
// the static trait-weight tables.
type Gene uint8

const (
	GeneHeight Gene = iota
	GenePotency
	GeneCBD
	GeneYield
	GeneResilience
	GeneMetabolism
	GeneFlowerTime
	GeneRootMass

	NumGenes = int(GeneRootMass) + 1
)

// geneNames is indexed by the gene ordinal.
var geneNames = [NumGenes]string{
	"height",
	"potency",
	"cbd",
	"yield",
	"resilience",
	"metabolism",
	"flower_time",
	"root_mass",
}

func (g Gene) String() string {
	if int(g) >= NumGenes {
		return "unknown"
	}
	return geneNames[g]
}

// Allele is one copy of a gene.
type Allele struct {
	Value     float32 // expression strength in [0,1]
	Dominance float32 // weight in the pair's combined expression
}

// AllelePair is the two inherited copies of a gene.
type AllelePair struct {
	A Allele
	B Allele
}

// Express combines the pair into a single expression value using
// dominance-weighted averaging. A pair with zero total dominance
// expresses the plain mean.
func (p AllelePair) Express() float32 {
	total := p.A.Dominance + p.B.Dominance
	if total <= 0 {
		return (p.A.Value + p.B.Value) * 0.5
	}
	return (p.A.Value*p.A.Dominance + p.B.Value*p.B.Dominance) / total
}

// Genotype maps every gene to an allele pair. Immutable once created;
// shared by reference between a plant and its ancestry record.
type Genotype struct {
	pairs [NumGenes]AllelePair
}

// NewGenotype builds a genotype from explicit pairs. Genes absent from
// the map get a neutral pair (both alleles at 0.5, equal dominance).
func NewGenotype(pairs map[Gene]AllelePair) *Genotype {
	g := &Genotype{}
	neutral := AllelePair{
		A: Allele{Value: 0.5, Dominance: 0.5},
		B: Allele{Value: 0.5, Dominance: 0.5},
	}
	for i := 0; i < NumGenes; i++ {
		g.pairs[i] = neutral
	}
	for gene, pair := range pairs {
		if int(gene) < NumGenes {
			g.pairs[gene] = pair
		}
	}
	return g
}

// Random generates a genotype with uniformly random allele values and
// dominance, for founder plants.
func Random(rng *rand.Rand) *Genotype {
	g := &Genotype{}
	for i := 0; i < NumGenes; i++ {
		g.pairs[i] = AllelePair{
			A: Allele{Value: rng.Float32(), Dominance: 0.3 + rng.Float32()*0.7},
			B: Allele{Value: rng.Float32(), Dominance: 0.3 + rng.Float32()*0.7},
		}
	}
	return g
}

// Cross produces an offspring genotype: one allele drawn from each parent
// per gene, with a small chance of mutation nudging the inherited value.
func Cross(mother, father *Genotype, mutationRate float64, rng *rand.Rand) *Genotype {
	child := &Genotype{}
	for i := 0; i < NumGenes; i++ {
		var a, b Allele
		if rng.Intn(2) == 0 {
			a = mother.pairs[i].A
		} else {
			a = mother.pairs[i].B
		}
		if rng.Intn(2) == 0 {
			b = father.pairs[i].A
		} else {
			b = father.pairs[i].B
		}

		if rng.Float64() < mutationRate {
			a.Value = clamp01(a.Value + float32(rng.NormFloat64())*0.05)
		}
		if rng.Float64() < mutationRate {
			b.Value = clamp01(b.Value + float32(rng.NormFloat64())*0.05)
		}

		child.pairs[i] = AllelePair{A: a, B: b}
	}
	return child
}

// Pair returns the allele pair at a gene.
func (g *Genotype) Pair(gene Gene) AllelePair {
	if int(gene) >= NumGenes {
		return AllelePair{}
	}
	return g.pairs[gene]
}

// expressed fills dst with the per-gene expressed values in gene order.
func (g *Genotype) expressed(dst *[NumGenes]float32) {
	for i := 0; i < NumGenes; i++ {
		dst[i] = g.pairs[i].Express()
	}
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
