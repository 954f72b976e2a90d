package genetics

// Trait indexes the four expressed phenotype traits.
const (
	TraitHeight = iota
	TraitPotency
	TraitCBD
	TraitYield

	NumTraits = 4
)

// geneTraitWeights maps each gene's expressed value into the four traits.
// Rows are genes (ordinal order), columns are traits. Off-primary entries
// are the pleiotropic contributions; with pleiotropy disabled only the
// primary column is used.
var geneTraitWeights = [NumGenes][NumTraits]float32{
	GeneHeight:     {1.00, 0.00, 0.00, 0.15},
	GenePotency:    {0.00, 1.00, -0.20, 0.00},
	GeneCBD:        {0.00, -0.20, 1.00, 0.00},
	GeneYield:      {0.10, 0.00, 0.00, 1.00},
	GeneResilience: {0.00, 0.10, 0.10, 0.20},
	GeneMetabolism: {0.25, 0.00, 0.00, 0.30},
	GeneFlowerTime: {0.00, 0.20, 0.10, 0.15},
	GeneRootMass:   {0.20, 0.00, 0.00, 0.25},
}

// primaryTrait is each gene's main trait, used when pleiotropy is off.
var primaryTrait = [NumGenes]int{
	GeneHeight:     TraitHeight,
	GenePotency:    TraitPotency,
	GeneCBD:        TraitCBD,
	GeneYield:      TraitYield,
	GeneResilience: TraitYield,
	GeneMetabolism: TraitYield,
	GeneFlowerTime: TraitPotency,
	GeneRootMass:   TraitHeight,
}

// epistasisRule modulates one trait when two loci are both strongly
// expressed. Factors above 1 are synergies, below 1 suppressions.
type epistasisRule struct {
	a, b      Gene
	trait     int
	threshold float32
	factor    float32
}

// epistasisRules are the non-additive gene-pair interactions.
var epistasisRules = []epistasisRule{
	// Fast metabolism amplifies an already strong yield locus.
	{a: GeneMetabolism, b: GeneYield, trait: TraitYield, threshold: 0.6, factor: 1.15},
	// Long flowering plus a strong potency locus boosts potency.
	{a: GeneFlowerTime, b: GenePotency, trait: TraitPotency, threshold: 0.6, factor: 1.10},
	// Heavy resilience investment suppresses peak potency.
	{a: GeneResilience, b: GenePotency, trait: TraitPotency, threshold: 0.7, factor: 0.92},
	// Deep roots support tall phenotypes.
	{a: GeneRootMass, b: GeneHeight, trait: TraitHeight, threshold: 0.6, factor: 1.08},
	// High-CBD plants trade against yield when both loci run hot.
	{a: GeneCBD, b: GeneYield, trait: TraitYield, threshold: 0.7, factor: 0.95},
}

// buildWeightColumns flattens the gene-trait table into per-trait weight
// columns for dot-product evaluation, masking off-primary entries when
// pleiotropy is disabled. The returned sums normalize each trait so a
// uniformly neutral genotype (all genes at 0.5) expresses 0.5 everywhere.
func buildWeightColumns(pleiotropy bool) (cols [NumTraits][]float32, sums [NumTraits]float32) {
	for t := 0; t < NumTraits; t++ {
		cols[t] = make([]float32, NumGenes)
	}
	for g := 0; g < NumGenes; g++ {
		for t := 0; t < NumTraits; t++ {
			w := geneTraitWeights[g][t]
			if !pleiotropy && t != primaryTrait[g] {
				continue
			}
			cols[t][g] = w
			sums[t] += absWeight(w)
		}
	}
	return cols, sums
}

// applyEpistasis modulates traits in place for every rule whose two loci
// are both expressed above the rule's threshold.
func applyEpistasis(expr *[NumGenes]float32, traits *[NumTraits]float32) {
	for _, r := range epistasisRules {
		if expr[r.a] > r.threshold && expr[r.b] > r.threshold {
			traits[r.trait] *= r.factor
		}
	}
}

func absWeight(w float32) float32 {
	if w < 0 {
		return -w
	}
	return w
}
