// internal/transform/validate/validate_test.go
package validate

import (
	"testing"

	"food-scanner/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func f(v float64) *float64 { return &v }

func createCompleteInput() Input {
	return Input{
		Raw: &models.RawProduct{
			Barcode:     "3017620422003",
			ProductName: "Nutella",
			BrandName:   "Ferrero",
			ExtractionSuccess: map[string]bool{
				"barcode":      true,
				"product_name": true,
				"brand_name":   true,
			},
		},
		CO2Resolved: true,
		NutriGrade:  "E",
		NutriScore:  f(26),
		WeightGrams: f(400),
	}
}

// ==========================
// Rejection Rule Tests
// ==========================

func TestCheck_CompleteProductPasses(t *testing.T) {
	out := Check(createCompleteInput())

	assert.True(t, out.Valid)
	assert.Empty(t, out.Reasons)
	assert.Empty(t, out.Warnings)
}

func TestCheck_SingleRuleFailures(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(in *Input)
		expectedReason string
	}{
		{
			name: "empty barcode",
			mutate: func(in *Input) {
				in.Raw.Barcode = "  "
			},
			expectedReason: ReasonMissingBarcode,
		},
		{
			name: "extraction flagged barcode as failed",
			mutate: func(in *Input) {
				in.Raw.ExtractionSuccess["barcode"] = false
			},
			expectedReason: ReasonMissingBarcode,
		},
		{
			name: "missing product name",
			mutate: func(in *Input) {
				in.Raw.ProductName = ""
			},
			expectedReason: ReasonMissingProductName,
		},
		{
			name: "missing brand name",
			mutate: func(in *Input) {
				in.Raw.BrandName = ""
			},
			expectedReason: ReasonMissingBrandName,
		},
		{
			name: "no resolved CO2",
			mutate: func(in *Input) {
				in.CO2Resolved = false
			},
			expectedReason: ReasonMissingCO2,
		},
		{
			name: "neither nutriscore grade nor score",
			mutate: func(in *Input) {
				in.NutriGrade = ""
				in.NutriScore = nil
			},
			expectedReason: ReasonMissingNutriScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := createCompleteInput()
			tt.mutate(&in)

			out := Check(in)

			assert.False(t, out.Valid)
			assert.Equal(t, []string{tt.expectedReason}, out.Reasons)
		})
	}
}

func TestCheck_NutriscoreEitherSuffices(t *testing.T) {
	t.Run("grade only", func(t *testing.T) {
		in := createCompleteInput()
		in.NutriScore = nil
		assert.True(t, Check(in).Valid)
	})

	t.Run("score only", func(t *testing.T) {
		in := createCompleteInput()
		in.NutriGrade = ""
		assert.True(t, Check(in).Valid)
	})
}

func TestCheck_ReasonsAccumulateInRuleOrder(t *testing.T) {
	in := Input{Raw: &models.RawProduct{}}

	out := Check(in)

	assert.False(t, out.Valid)
	assert.Equal(t, []string{
		ReasonMissingBarcode,
		ReasonMissingProductName,
		ReasonMissingBrandName,
		ReasonMissingCO2,
		ReasonMissingNutriScore,
	}, out.Reasons)
}

// ==========================
// Weight Warning Tests
// ==========================

func TestCheck_MissingWeightWarnsOnly(t *testing.T) {
	in := createCompleteInput()
	in.WeightGrams = nil

	out := Check(in)

	assert.True(t, out.Valid)
	assert.Empty(t, out.Reasons)
	assert.Equal(t, []string{WarningMissingWeight}, out.Warnings)
}

func TestCheck_NoExtractionBookkeeping(t *testing.T) {
	// Hand-fed records carry no extraction map; value checks still apply.
	in := createCompleteInput()
	in.Raw.ExtractionSuccess = nil

	assert.True(t, Check(in).Valid)

	in.Raw.Barcode = ""
	out := Check(in)
	assert.False(t, out.Valid)
	assert.Contains(t, out.Reasons, ReasonMissingBarcode)
}

// ==========================
// Reason Categorization Tests
// ==========================

func TestCategorizeReason(t *testing.T) {
	tests := []struct {
		reason   string
		expected string
	}{
		{reason: ReasonMissingBarcode, expected: "missing_barcode"},
		{reason: ReasonMissingProductName, expected: "missing_product_name"},
		{reason: ReasonMissingBrandName, expected: "missing_brand_name"},
		{reason: ReasonMissingCO2, expected: "missing_co2"},
		{reason: ReasonMissingNutriScore, expected: "missing_nutriscore"},
		{reason: WarningMissingWeight, expected: "missing_weight"},
		{reason: "something else entirely", expected: "invalid_data"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, CategorizeReason(tt.reason))
		})
	}
}
