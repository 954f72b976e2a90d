package sim

import (
	"math"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/verdant-sim/cultivar/components"
)

// HarvestResult is the downstream valuation of a harvested plant,
// computed from its final health and trait state.
type HarvestResult struct {
	Plant   uuid.UUID
	Strain  string
	Grams   float32
	Potency float32 // THC fraction
	CBD     float32
	Quality Quality
}

// Quality grades a harvest.
type Quality uint8

const (
	QualityPoor Quality = iota
	QualityFair
	QualityGood
	QualityPremium
)

var qualityNames = [...]string{"poor", "fair", "good", "premium"}

func (q Quality) String() string {
	if int(q) >= len(qualityNames) {
		return "unknown"
	}
	return qualityNames[q]
}

// Harvest cuts the plant down and values it. The yield follows the
// stage's yield modifier (zero for pre-flower and post-harvest stages),
// the plant's final health, and its last expressed traits. The plant is
// deactivated and removed on the next cleanup pass.
func (s *Sim) Harvest(id uuid.UUID) (HarvestResult, bool) {
	entity, ok := s.entityOf(id)
	if !ok {
		return HarvestResult{}, false
	}

	identity := s.idMap.Get(entity)
	health := s.healthMap.Get(entity)
	growth := s.growthMap.Get(entity)
	if identity == nil || health == nil || growth == nil || !health.Alive {
		return HarvestResult{}, false
	}

	res := s.valueHarvest(entity, identity, health, growth)

	growth.Stage = components.Harvested
	health.Alive = false
	s.collector.RecordHarvest(float64(res.Grams))

	return res, true
}

// valueHarvest computes the harvest result without mutating the plant.
func (s *Sim) valueHarvest(entity ecs.Entity, identity *components.Identity, health *components.Health, growth *components.Growth) HarvestResult {
	expr := s.lastExpr[identity.Handle]
	profile := s.catalog.Lookup(identity.Strain)

	yieldMod := growth.Stage.YieldModifier()
	healthFactor := float32(math.Pow(float64(health.Fraction()), s.cfg.Harvest.HealthExponent))

	grams := float32(s.cfg.Harvest.BaseYieldGrams) * yieldMod * healthFactor
	potency := float32(0.15)
	cbd := float32(0.01)
	if profile != nil {
		grams *= profile.BaseYield
		potency = profile.BasePotency
		cbd = profile.BaseCBD
	}
	if expr.Yield > 0 {
		grams *= expr.Yield
	}
	if expr.Potency > 0 {
		potency *= expr.Potency
	}
	if expr.CBD > 0 {
		cbd *= expr.CBD
	}

	return HarvestResult{
		Plant:   identity.ID,
		Strain:  identity.Strain,
		Grams:   grams,
		Potency: potency,
		CBD:     cbd,
		Quality: gradeHarvest(health.Fraction(), s.ledger.Level(identity.Handle), growth.Stage),
	}
}

// gradeHarvest maps final condition to a quality grade. Ripeness matters:
// anything pulled before Harvestable loses a grade.
func gradeHarvest(healthFraction, stressLevel float32, stage components.Stage) Quality {
	score := healthFraction * (1 - 0.5*stressLevel)

	var q Quality
	switch {
	case score >= 0.85:
		q = QualityPremium
	case score >= 0.65:
		q = QualityGood
	case score >= 0.4:
		q = QualityFair
	default:
		q = QualityPoor
	}

	if stage < components.Harvestable && q > QualityPoor {
		q--
	}
	return q
}
