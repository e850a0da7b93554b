// internal/models/raw.go
package models

// CO2Sources carries the candidate carbon footprint values extracted from the
// upstream catalog. Resolution picks the first usable one in a fixed priority
// order; the field order here mirrors that priority.
type CO2Sources struct {
	AgribalyseTotal            *float64 `json:"agribalyse_total,omitempty"`
	EcoscoreAgribalyseTotal    *float64 `json:"ecoscore_agribalyse_total,omitempty"`
	NutrimentsCarbonFootprint  *float64 `json:"nutriments_carbon_footprint,omitempty"`
	NutrimentsKnownIngredients *float64 `json:"nutriments_known_ingredients,omitempty"`
}

// RawProduct is one extracted catalog record before transformation. Values are
// kept as close to the upstream representation as possible; ExtractionSuccess
// records, per logical field, whether extraction found a usable value.
type RawProduct struct {
	Barcode         string   `json:"barcode"`
	ProductName     string   `json:"product_name"`
	BrandName       string   `json:"brand_name"`
	BrandTags       []string `json:"brand_tags,omitempty"`
	Quantity        string   `json:"quantity,omitempty"` // free-text, e.g. "2 x 100g"
	Weight          *float64 `json:"weight,omitempty"`
	WeightUnit      string   `json:"weight_unit,omitempty"`
	NutriScoreGrade string   `json:"nutriscore_grade,omitempty"`
	NutriScoreScore *float64 `json:"nutriscore_score,omitempty"`
	EcoScore        string   `json:"eco_score,omitempty"`

	CO2Sources CO2Sources `json:"co2_sources"`

	ExtractionSuccess map[string]bool `json:"extraction_success"`

	// CollectionTimestamp is when the record was pulled from the upstream API.
	CollectionTimestamp string `json:"collection_timestamp,omitempty"`
}

// FieldExtracted reports whether a logical field was successfully extracted.
// Records without extraction bookkeeping (hand-fed batches) count every field
// as extracted; the value checks still apply. With bookkeeping present, a
// missing entry counts as not extracted.
func (r *RawProduct) FieldExtracted(field string) bool {
	if r.ExtractionSuccess == nil {
		return true
	}
	return r.ExtractionSuccess[field]
}

// RawBatch maps barcode to the extracted record for that product.
type RawBatch map[string]*RawProduct
