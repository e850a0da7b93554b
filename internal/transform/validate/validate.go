// Package validate decides whether a transformed product meets the minimum
// bar for loading, accumulating every applicable rejection reason.
package validate

import (
	"strings"

	"food-scanner/internal/models"
)

// Rejection reason strings are stable: downstream reporting and the loader's
// rejection table match on them.
const (
	ReasonMissingBarcode     = "Missing or invalid barcode (required for primary key)"
	ReasonMissingProductName = "Missing product name (required for bot display)"
	ReasonMissingBrandName   = "Missing brand name (required for bot display)"
	ReasonMissingCO2         = "Missing CO2 data (required for carbon footprint functionality)"
	ReasonMissingNutriScore  = "Missing nutriscore data (need grade OR score)"

	WarningMissingWeight = "Missing weight data (reduces completeness, does not reject)"
)

// Input carries the already-normalized values the rules inspect.
type Input struct {
	Raw         *models.RawProduct
	CO2Resolved bool
	NutriGrade  string
	NutriScore  *float64
	WeightGrams *float64
}

// Outcome is the validation verdict. Reasons appear in rule order and a
// product failing several rules collects all of them.
type Outcome struct {
	Valid    bool
	Reasons  []string
	Warnings []string
}

// Check applies the rejection rules to one product. Pure: counters and
// logging belong to the caller.
func Check(in Input) Outcome {
	var out Outcome

	if !in.Raw.FieldExtracted("barcode") || strings.TrimSpace(in.Raw.Barcode) == "" {
		out.Reasons = append(out.Reasons, ReasonMissingBarcode)
	}
	if !in.Raw.FieldExtracted("product_name") || strings.TrimSpace(in.Raw.ProductName) == "" {
		out.Reasons = append(out.Reasons, ReasonMissingProductName)
	}
	if !in.Raw.FieldExtracted("brand_name") || strings.TrimSpace(in.Raw.BrandName) == "" {
		out.Reasons = append(out.Reasons, ReasonMissingBrandName)
	}
	if !in.CO2Resolved {
		out.Reasons = append(out.Reasons, ReasonMissingCO2)
	}
	if in.NutriGrade == "" && in.NutriScore == nil {
		out.Reasons = append(out.Reasons, ReasonMissingNutriScore)
	}

	// Weight never rejects: carbon totals degrade gracefully without it.
	if in.WeightGrams == nil {
		out.Warnings = append(out.Warnings, WarningMissingWeight)
	}

	out.Valid = len(out.Reasons) == 0
	return out
}

// CategorizeReason buckets a rejection reason for stats breakdowns.
func CategorizeReason(reason string) string {
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "barcode"):
		return "missing_barcode"
	case strings.Contains(lower, "product name"):
		return "missing_product_name"
	case strings.Contains(lower, "brand name"):
		return "missing_brand_name"
	case strings.Contains(lower, "weight"):
		return "missing_weight"
	case strings.Contains(lower, "co2"):
		return "missing_co2"
	case strings.Contains(lower, "nutriscore"):
		return "missing_nutriscore"
	default:
		return "invalid_data"
	}
}
