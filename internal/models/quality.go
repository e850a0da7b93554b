// internal/models/quality.go
package models

// FieldQuality aggregates presence and validity for one logical field across
// a batch. Rates are percentages in [0,100].
type FieldQuality struct {
	Field        string  `json:"field"`
	Present      int     `json:"present"`
	Valid        int     `json:"valid"`
	Total        int     `json:"total"`
	PresenceRate float64 `json:"presence_rate"`
	ValidityRate float64 `json:"validity_rate"`
	QualityScore float64 `json:"quality_score"`
}

// QualityReport is the batch-level readiness assessment.
type QualityReport struct {
	TotalProducts    int `json:"total_products"`
	ValidatedCount   int `json:"validated_count"`
	RejectedCount    int `json:"rejected_count"`
	CompleteProducts int `json:"complete_products"`

	FieldScores map[string]FieldQuality `json:"field_scores"`

	SuccessRate       float64 `json:"success_rate"`
	QuantityParseRate float64 `json:"quantity_parse_rate"`
	CO2Coverage       float64 `json:"co2_coverage"`

	OverallScore float64 `json:"overall_score"`
	Grade        string  `json:"grade"`

	BotLaunchReady       bool `json:"bot_launch_ready"`
	MinimumViableDataset bool `json:"minimum_viable_dataset"`

	NextSteps []string `json:"next_steps,omitempty"`
}

// RejectionBreakdown counts rejected products per reason category.
type RejectionBreakdown struct {
	MissingBarcode     int `json:"missing_barcode"`
	MissingProductName int `json:"missing_product_name"`
	MissingBrandName   int `json:"missing_brand_name"`
	MissingWeight      int `json:"missing_weight"`
	MissingCO2         int `json:"missing_co2"`
	MissingNutriScore  int `json:"missing_nutriscore"`
	InvalidData        int `json:"invalid_data"`
}
