// internal/extract/openfoodfacts/mapper.go
package openfoodfacts

import (
	"strconv"
	"strings"
	"time"

	"food-scanner/internal/models"
)

// MapProduct converts a decoded catalog payload into a RawProduct, applying
// the per-field fallback chains and recording extraction success per field.
func MapProduct(payload map[string]interface{}) *models.RawProduct {
	p := &models.RawProduct{
		ExtractionSuccess:   map[string]bool{},
		CollectionTimestamp: time.Now().UTC().Format(time.RFC3339),
	}

	// Barcode stays a string to preserve leading zeros.
	p.Barcode = asString(payload["code"])
	p.ExtractionSuccess["barcode"] = p.Barcode != ""

	// French name first: the bot audience is francophone.
	p.ProductName = firstNonEmpty(
		asString(payload["product_name_fr"]),
		asString(payload["product_name"]),
	)
	p.ExtractionSuccess["product_name"] = p.ProductName != ""

	p.BrandName, p.BrandTags = extractBrand(payload)
	p.ExtractionSuccess["brand_name"] = p.BrandName != ""

	extractWeight(payload, p)
	extractNutriScore(payload, p)

	p.EcoScore = asString(payload["ecoscore_grade"])
	p.ExtractionSuccess["eco_score"] = p.EcoScore != ""

	extractCO2(payload, p)

	return p
}

// extractBrand follows the chain brands -> brands_tags[0] -> brands_imported.
// Tags arrive hyphenated ("cote-d-or") and get despaced for display.
func extractBrand(payload map[string]interface{}) (string, []string) {
	tags := asStringSlice(payload["brands_tags"])

	if brands := asString(payload["brands"]); brands != "" {
		return brands, tags
	}
	if len(tags) > 0 {
		return strings.ReplaceAll(tags[0], "-", " "), tags
	}
	return asString(payload["brands_imported"]), tags
}

// extractWeight prefers the structured quantity fields and keeps the
// free-text quantity for the parser cascade otherwise.
func extractWeight(payload map[string]interface{}, p *models.RawProduct) {
	if v, ok := asFloat(payload["product_quantity"]); ok {
		unit := asString(payload["product_quantity_unit"])
		if unit == "" {
			unit = "g"
		}
		p.Weight = &v
		p.WeightUnit = unit
		p.ExtractionSuccess["weight"] = true
		return
	}

	p.Quantity = asString(payload["quantity"])
	p.ExtractionSuccess["weight"] = p.Quantity != ""
}

// extractNutriScore follows nested nutriscore -> flat fields ->
// nutrition_grades.
func extractNutriScore(payload map[string]interface{}, p *models.RawProduct) {
	if nested, ok := payload["nutriscore"].(map[string]interface{}); ok {
		p.NutriScoreGrade = asString(nested["grade"])
		if v, ok := asFloat(nested["score"]); ok {
			p.NutriScoreScore = &v
		}
	}
	if p.NutriScoreGrade == "" {
		p.NutriScoreGrade = asString(payload["nutriscore_grade"])
	}
	if p.NutriScoreScore == nil {
		if v, ok := asFloat(payload["nutriscore_score"]); ok {
			p.NutriScoreScore = &v
		}
	}
	if p.NutriScoreGrade == "" {
		p.NutriScoreGrade = asString(payload["nutrition_grades"])
	}

	p.ExtractionSuccess["nutriscore_grade"] = p.NutriScoreGrade != ""
	p.ExtractionSuccess["nutriscore_score"] = p.NutriScoreScore != nil
}

// extractCO2 collects all four candidate sources; resolution happens later.
func extractCO2(payload map[string]interface{}, p *models.RawProduct) {
	if agribalyse, ok := payload["agribalyse"].(map[string]interface{}); ok {
		if v, ok := asFloat(agribalyse["co2_total"]); ok {
			p.CO2Sources.AgribalyseTotal = &v
		}
	}
	if ecoscore, ok := payload["ecoscore_data"].(map[string]interface{}); ok {
		if agribalyse, ok := ecoscore["agribalyse"].(map[string]interface{}); ok {
			if v, ok := asFloat(agribalyse["co2_total"]); ok {
				p.CO2Sources.EcoscoreAgribalyseTotal = &v
			}
		}
	}
	if nutriments, ok := payload["nutriments"].(map[string]interface{}); ok {
		if v, ok := asFloat(nutriments["carbon-footprint_100g"]); ok {
			p.CO2Sources.NutrimentsCarbonFootprint = &v
		}
		if v, ok := asFloat(nutriments["carbon-footprint-from-known-ingredients_100g"]); ok {
			p.CO2Sources.NutrimentsKnownIngredients = &v
		}
	}

	p.ExtractionSuccess["co2_total"] = p.CO2Sources.AgribalyseTotal != nil ||
		p.CO2Sources.EcoscoreAgribalyseTotal != nil ||
		p.CO2Sources.NutrimentsCarbonFootprint != nil ||
		p.CO2Sources.NutrimentsKnownIngredients != nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
