// Package derived computes the consumer-facing carbon metrics from a
// product's footprint and weight: total emissions, transport distance
// equivalents and an impact band.
package derived

import (
	"food-scanner/internal/models"
	"food-scanner/internal/transform/units"
)

// Emission factors in grams of CO2 per km per passenger.
const (
	CarGramsPerKm   = 120.0
	TrainGramsPerKm = 14.0
	BusGramsPerKm   = 68.0
	PlaneGramsPerKm = 255.0
)

// Impact band thresholds in grams of CO2 total.
const (
	ImpactLow      = "LOW"
	ImpactMedium   = "MEDIUM"
	ImpactHigh     = "HIGH"
	ImpactVeryHigh = "VERY_HIGH"

	lowCeiling    = 500.0
	mediumCeiling = 1500.0
	highCeiling   = 3000.0
)

// Fields holds one product's derived metrics. Produced atomically: a product
// either gets the full set or none of it.
type Fields struct {
	CO2TotalGrams float64
	Transport     models.TransportEquivalents
	ImpactLevel   string
}

// Calculate derives the full metric set. Both inputs are required; missing
// either yields nil and the product keeps its per-100g value only.
func Calculate(co2Per100g, weightGrams *float64) *Fields {
	if co2Per100g == nil || weightGrams == nil {
		return nil
	}

	total := units.Round3(*co2Per100g * *weightGrams / 100)

	return &Fields{
		CO2TotalGrams: total,
		Transport: models.TransportEquivalents{
			CarKm:   units.Round3(total / CarGramsPerKm),
			TrainKm: units.Round3(total / TrainGramsPerKm),
			BusKm:   units.Round3(total / BusGramsPerKm),
			PlaneKm: units.Round3(total / PlaneGramsPerKm),
		},
		ImpactLevel: impactLevel(total),
	}
}

func impactLevel(totalGrams float64) string {
	switch {
	case totalGrams <= lowCeiling:
		return ImpactLow
	case totalGrams <= mediumCeiling:
		return ImpactMedium
	case totalGrams <= highCeiling:
		return ImpactHigh
	default:
		return ImpactVeryHigh
	}
}
