package species

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/gocarina/gocsv"
)

//go:embed strains.csv
var strainsCSV []byte

// profileRow is the flat CSV record a profile is loaded from.
type profileRow struct {
	Strain        string  `csv:"strain"`
	Name          string  `csv:"name"`
	TempMin       float32 `csv:"temp_min"`
	TempOpt       float32 `csv:"temp_opt"`
	TempMax       float32 `csv:"temp_max"`
	HumidMin      float32 `csv:"humid_min"`
	HumidOpt      float32 `csv:"humid_opt"`
	HumidMax      float32 `csv:"humid_max"`
	LightMin      float32 `csv:"light_min"`
	LightOpt      float32 `csv:"light_opt"`
	LightMax      float32 `csv:"light_max"`
	CO2Min        float32 `csv:"co2_min"`
	CO2Opt        float32 `csv:"co2_opt"`
	CO2Max        float32 `csv:"co2_max"`
	BaseHeight    float32 `csv:"base_height"`
	BasePotency   float32 `csv:"base_potency"`
	BaseCBD       float32 `csv:"base_cbd"`
	BaseYield     float32 `csv:"base_yield"`
	FloweringDays int     `csv:"flowering_days"`
}

// Catalog is a read-only strain profile lookup. Profiles are immutable
// once loaded and shared by reference across all organisms of a strain.
type Catalog struct {
	profiles map[string]*Profile
	keys     []string
}

// LoadCatalog builds a catalog from the embedded strain data, optionally
// merged with an external CSV file (external rows override embedded rows
// with the same strain key).
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{profiles: make(map[string]*Profile)}

	if err := c.loadCSV(strainsCSV); err != nil {
		return nil, fmt.Errorf("parsing embedded strain data: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading strain file: %w", err)
		}
		if err := c.loadCSV(data); err != nil {
			return nil, fmt.Errorf("parsing strain file: %w", err)
		}
	}

	c.keys = c.keys[:0]
	for k := range c.profiles {
		c.keys = append(c.keys, k)
	}
	return c, nil
}

func (c *Catalog) loadCSV(data []byte) error {
	var rows []profileRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return err
	}
	for _, r := range rows {
		key := normalizeKey(r.Strain)
		c.profiles[key] = &Profile{
			Strain:        r.Strain,
			Name:          r.Name,
			Temperature:   ToleranceBand{Min: r.TempMin, Optimal: r.TempOpt, Max: r.TempMax},
			Humidity:      ToleranceBand{Min: r.HumidMin, Optimal: r.HumidOpt, Max: r.HumidMax},
			Light:         ToleranceBand{Min: r.LightMin, Optimal: r.LightOpt, Max: r.LightMax},
			CO2:           ToleranceBand{Min: r.CO2Min, Optimal: r.CO2Opt, Max: r.CO2Max},
			BaseHeight:    r.BaseHeight,
			BasePotency:   r.BasePotency,
			BaseCBD:       r.BaseCBD,
			BaseYield:     r.BaseYield,
			FloweringDays: r.FloweringDays,
		}
	}
	return nil
}

// Lookup returns the profile for a strain key, or nil if unknown.
// Callers treat a nil profile as "no data, no penalty".
func (c *Catalog) Lookup(strain string) *Profile {
	return c.profiles[normalizeKey(strain)]
}

// Suggest returns the catalog strain closest to the given name by edit
// distance, for diagnostics when a lookup misses. Returns "" when the
// catalog is empty or nothing is plausibly close.
func (c *Catalog) Suggest(strain string) string {
	const maxDistance = 5
	want := normalizeKey(strain)
	best := ""
	bestDist := maxDistance + 1
	for _, k := range c.keys {
		d := levenshtein.ComputeDistance(want, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}
	if best == "" {
		return ""
	}
	return c.profiles[best].Strain
}

// Strains returns all catalog keys.
func (c *Catalog) Strains() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of profiles in the catalog.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
