// Package co2 resolves a product's carbon footprint per 100g from the
// competing source candidates the upstream catalog exposes.
package co2

import (
	"fmt"

	"food-scanner/internal/models"
	"food-scanner/internal/transform/units"
)

// Source names, in resolution priority order.
const (
	SourceAgribalyse           = "agribalyse_total"
	SourceEcoscoreAgribalyse   = "ecoscore_agribalyse_total"
	SourceNutrimentsFootprint  = "nutriments_carbon_footprint"
	SourceNutrimentsKnownIngr  = "nutriments_known_ingredients"
)

// Range bounds a plausible CO2 value in grams per 100g of product.
type Range struct {
	Min float64
	Max float64
}

// DefaultRange is the plausibility window applied when no range is configured.
var DefaultRange = Range{Min: 0, Max: 10000}

// Resolution is the outcome of resolving one product's CO2 candidates.
type Resolution struct {
	Value  *float64 // grams CO2 per 100g, rounded to 3 decimals
	Source string   // winning source name, empty when unresolved
	Issues []string // out-of-range candidates skipped on the way
}

// Resolver picks the highest-priority usable CO2 source.
type Resolver struct {
	valid Range
}

func NewResolver(valid Range) *Resolver {
	if valid.Max <= valid.Min {
		valid = DefaultRange
	}
	return &Resolver{valid: valid}
}

// Resolve walks the candidates in priority order and returns the first value
// inside the plausible range. Out-of-range candidates are skipped and
// reported as quality issues; they never win even if later sources are empty.
func (r *Resolver) Resolve(sources models.CO2Sources) Resolution {
	candidates := []struct {
		name  string
		value *float64
	}{
		{SourceAgribalyse, sources.AgribalyseTotal},
		{SourceEcoscoreAgribalyse, sources.EcoscoreAgribalyseTotal},
		{SourceNutrimentsFootprint, sources.NutrimentsCarbonFootprint},
		{SourceNutrimentsKnownIngr, sources.NutrimentsKnownIngredients},
	}

	var res Resolution
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		if *c.value < r.valid.Min || *c.value > r.valid.Max {
			res.Issues = append(res.Issues,
				fmt.Sprintf("co2 source %s out of range: %g", c.name, *c.value))
			continue
		}
		v := units.Round3(*c.value)
		res.Value = &v
		res.Source = c.name
		return res
	}

	return res
}
