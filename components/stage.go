package components

// Stage is a plant growth stage. Stages are strictly ordered; a plant
// advances one stage at a time and never regresses.
type Stage uint8

const (
	Seed Stage = iota
	Germination
	Seedling
	Vegetative
	PreFlowering
	Flowering
	Ripening
	Harvestable
	Harvested
	Drying
	Curing

	NumStages = int(Curing) + 1
)

// stageNames is indexed by the stage ordinal.
var stageNames = [NumStages]string{
	"seed",
	"germination",
	"seedling",
	"vegetative",
	"pre_flowering",
	"flowering",
	"ripening",
	"harvestable",
	"harvested",
	"drying",
	"curing",
}

// baseGrowthRates is the per-stage base growth-rate constant, in progress
// units per simulated hour. Indexed by the stage ordinal.
var baseGrowthRates = [NumStages]float32{
	0.020, // Seed
	0.035, // Germination
	0.030, // Seedling
	0.012, // Vegetative
	0.018, // PreFlowering
	0.008, // Flowering
	0.015, // Ripening
	0.000, // Harvestable: waits for harvest
	0.000, // Harvested
	0.000, // Drying
	0.000, // Curing
}

// yieldModifiers is the per-stage yield multiplier at harvest time.
// Post-harvest stages yield zero by definition. Indexed by the ordinal.
var yieldModifiers = [NumStages]float32{
	0.00, // Seed
	0.00, // Germination
	0.00, // Seedling
	0.05, // Vegetative: token yield for an early pull
	0.25, // PreFlowering
	0.60, // Flowering
	0.90, // Ripening
	1.00, // Harvestable
	0.00, // Harvested
	0.00, // Drying
	0.00, // Curing
}

func (s Stage) String() string {
	if int(s) >= NumStages {
		return "unknown"
	}
	return stageNames[s]
}

// BaseGrowthRate returns the stage's base growth-rate constant.
func (s Stage) BaseGrowthRate() float32 {
	if int(s) >= NumStages {
		return 0
	}
	return baseGrowthRates[s]
}

// YieldModifier returns the stage's yield multiplier.
func (s Stage) YieldModifier() float32 {
	if int(s) >= NumStages {
		return 0
	}
	return yieldModifiers[s]
}

// Next returns the following stage, or the same stage if terminal.
func (s Stage) Next() Stage {
	if s >= Curing {
		return Curing
	}
	return s + 1
}

// Terminal reports whether the stage is past harvest.
func (s Stage) Terminal() bool {
	return s >= Harvested
}

// CanAdvance reports whether a plant may advance out of this stage given
// its accumulated progress and health fraction.
func (s Stage) CanAdvance(progress, healthFraction, minHealth float32) bool {
	if s >= Curing {
		return false
	}
	return progress >= 1.0 && healthFraction > minHealth
}
