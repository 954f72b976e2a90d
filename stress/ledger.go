package stress

// Stressor is one active stress entry on a plant. Owned by the ledger;
// no stressor outlives its plant's ledger entry.
type Stressor struct {
	Source    Source
	Intensity float32 // (0,1] in practice; entries at <= 0 are removed
	StartAge  float32 // plant age in seconds when the stressor appeared
	Active    bool
}

// Params are the ledger's tunable constants.
type Params struct {
	RecoveryRate         float32 // intensity decay per second
	LowFitnessThreshold  float32 // below this, the environment synthesizes stress
	LowFitnessRate       float32 // synthesis rate factor, stress += (1-fitness)*rate*dt
	HighFitnessThreshold float32 // above this, health regenerates
	RegenRate            float32 // regen = (fitness-threshold)*rate*dt
}

// TickResult is the outcome of one ledger tick for one plant.
type TickResult struct {
	Damage float32 // health damage accrued this tick
	Regen  float32 // health regeneration bonus this tick
	Level  float32 // aggregate stress level after recovery, in [0,1]
}

// Ledger holds active stressors for every tracked plant, keyed by the
// plant's arena handle.
type Ledger struct {
	params  Params
	entries map[uint32][]Stressor
}

// NewLedger creates an empty ledger.
func NewLedger(params Params) *Ledger {
	return &Ledger{
		params:  params,
		entries: make(map[uint32][]Stressor),
	}
}

// Apply inserts a stressor or, if the same source is already active on the
// plant, updates its intensity in place. Applications of the same source
// never stack as separate entries. Intensity <= 0 is a no-op.
func (l *Ledger) Apply(handle uint32, src Source, intensity, plantAge float32) {
	if intensity <= 0 {
		return
	}
	if intensity > 1 {
		intensity = 1
	}

	entry := l.entries[handle]
	for i := range entry {
		if entry[i].Source.Name == src.Name {
			entry[i].Intensity = intensity
			entry[i].Active = true
			return
		}
	}
	l.entries[handle] = append(entry, Stressor{
		Source:    src,
		Intensity: intensity,
		StartAge:  plantAge,
		Active:    true,
	})
}

// Remove clears the named stressor from the plant, if present.
func (l *Ledger) Remove(handle uint32, sourceName string) {
	entry := l.entries[handle]
	for i := range entry {
		if entry[i].Source.Name == sourceName {
			l.entries[handle] = append(entry[:i], entry[i+1:]...)
			if len(l.entries[handle]) == 0 {
				delete(l.entries, handle)
			}
			return
		}
	}
}

// Tick advances one plant's stressors by dt seconds. Damage accumulates
// from active stressors, each stressor decays toward zero at the recovery
// rate, and spent stressors are dropped before the aggregate level is
// computed. Low combined fitness synthesizes environmental stress through
// envSource (nil disables synthesis); high fitness grants a regen bonus.
func (l *Ledger) Tick(handle uint32, fitness float32, envSource *Source, plantAge, dt float32) TickResult {
	var res TickResult
	p := &l.params

	entry := l.entries[handle]
	kept := entry[:0]
	for i := range entry {
		s := &entry[i]
		if !s.Active || s.Intensity <= 0 {
			continue
		}
		res.Damage += s.Intensity * s.Source.DamagePerSecond * dt

		s.Intensity -= p.RecoveryRate * dt
		if s.Intensity <= 0 {
			continue // recovered, drop this tick
		}
		kept = append(kept, *s)
	}

	// Low-fitness environments grow an environmental stressor instead of
	// stacking fresh entries each tick.
	if envSource != nil && fitness < p.LowFitnessThreshold {
		grow := (1 - fitness) * p.LowFitnessRate * dt
		found := false
		for i := range kept {
			if kept[i].Source.Name == envSource.Name {
				kept[i].Intensity = clamp01(kept[i].Intensity + grow)
				found = true
				break
			}
		}
		if !found && grow > 0 {
			kept = append(kept, Stressor{
				Source:    *envSource,
				Intensity: clamp01(grow),
				StartAge:  plantAge,
				Active:    true,
			})
		}
	}

	if fitness > p.HighFitnessThreshold {
		res.Regen = (fitness - p.HighFitnessThreshold) * p.RegenRate * dt
	}

	if len(kept) == 0 {
		delete(l.entries, handle)
	} else {
		l.entries[handle] = kept
	}

	res.Level = l.Level(handle)
	return res
}

// Level returns the plant's aggregate stress level: the clamped sum of
// intensity times source multiplier over active stressors.
func (l *Ledger) Level(handle uint32) float32 {
	var sum float32
	for _, s := range l.entries[handle] {
		if s.Active {
			sum += s.Intensity * s.Source.Multiplier
		}
	}
	return clamp01(sum)
}

// Stressors returns a copy of the plant's active stressors.
func (l *Ledger) Stressors(handle uint32) []Stressor {
	entry := l.entries[handle]
	if len(entry) == 0 {
		return nil
	}
	out := make([]Stressor, len(entry))
	copy(out, entry)
	return out
}

// Drop removes all state for a plant. Called when the plant is destroyed.
func (l *Ledger) Drop(handle uint32) {
	delete(l.entries, handle)
}

// Count returns the number of plants with active stressors.
func (l *Ledger) Count() int {
	return len(l.entries)
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
