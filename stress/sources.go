// Package stress tracks per-plant stressors: external sources applied by
// collaborators plus stress synthesized from poor environmental fitness.
// The ledger accumulates damage, decays stressors toward recovery, and
// derives the aggregate stress level consumed by trait expression.
package stress

// Category classifies a stress source. The taxonomy is load-bearing:
// trait expression translates each category into a named stress factor
// that downstream plant-state consumers dispatch on.
type Category uint8

const (
	Heat Category = iota
	Cold
	Light
	Drought
	Flood
	Nutrient
	Atmospheric

	NumCategories = int(Atmospheric) + 1
)

// categoryNames is indexed by the category ordinal.
var categoryNames = [NumCategories]string{
	"heat",
	"cold",
	"light",
	"drought",
	"flood",
	"nutrient",
	"atmospheric",
}

func (c Category) String() string {
	if int(c) >= NumCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// Source is a read-only stressor definition.
type Source struct {
	Name            string
	DamagePerSecond float32 // health damage per second at intensity 1.0
	Multiplier      float32 // weight in the aggregate stress level
	Category        Category
}

// SourceCatalog is a read-only lookup of stressor definitions.
type SourceCatalog struct {
	sources map[string]Source
}

// DefaultSources are the built-in stressor definitions.
var DefaultSources = []Source{
	{Name: "Heat", DamagePerSecond: 0.0020, Multiplier: 0.30, Category: Heat},
	{Name: "Cold", DamagePerSecond: 0.0015, Multiplier: 0.25, Category: Cold},
	{Name: "LightBurn", DamagePerSecond: 0.0018, Multiplier: 0.25, Category: Light},
	{Name: "LowLight", DamagePerSecond: 0.0008, Multiplier: 0.15, Category: Light},
	{Name: "Drought", DamagePerSecond: 0.0025, Multiplier: 0.35, Category: Drought},
	{Name: "Overwatering", DamagePerSecond: 0.0012, Multiplier: 0.20, Category: Flood},
	{Name: "NutrientDeficiency", DamagePerSecond: 0.0010, Multiplier: 0.20, Category: Nutrient},
	{Name: "NutrientBurn", DamagePerSecond: 0.0016, Multiplier: 0.25, Category: Nutrient},
	{Name: "StaleAir", DamagePerSecond: 0.0006, Multiplier: 0.10, Category: Atmospheric},
}

// NewSourceCatalog builds a catalog from the built-in definitions plus any
// extras (extras override built-ins with the same name).
func NewSourceCatalog(extra ...Source) *SourceCatalog {
	c := &SourceCatalog{sources: make(map[string]Source, len(DefaultSources)+len(extra))}
	for _, s := range DefaultSources {
		c.sources[s.Name] = s
	}
	for _, s := range extra {
		c.sources[s.Name] = s
	}
	return c
}

// Lookup returns the source definition and whether it exists.
func (c *SourceCatalog) Lookup(name string) (Source, bool) {
	s, ok := c.sources[name]
	return s, ok
}

// Names returns all registered source names.
func (c *SourceCatalog) Names() []string {
	out := make([]string, 0, len(c.sources))
	for name := range c.sources {
		out = append(out, name)
	}
	return out
}
