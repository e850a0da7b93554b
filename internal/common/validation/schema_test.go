// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"food-scanner/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Batch Shape Tests
// ==========================

func TestValidateBatch(t *testing.T) {
	tests := []struct {
		name    string
		batch   map[string]interface{}
		wantErr bool
	}{
		{
			name: "minimal valid batch",
			batch: map[string]interface{}{
				"3017620422003": map[string]interface{}{
					"product_name": "Nutella",
				},
			},
			wantErr: false,
		},
		{
			name: "full product entry",
			batch: map[string]interface{}{
				"3017620422003": map[string]interface{}{
					"barcode":          "3017620422003",
					"product_name":     "Nutella",
					"brand_name":       "Ferrero",
					"brand_tags":       []interface{}{"ferrero", "nutella"},
					"quantity":         "400g",
					"weight":           400.0,
					"weight_unit":      "g",
					"nutriscore_grade": "e",
					"nutriscore_score": 26.0,
					"eco_score":        "d",
					"co2_sources":      map[string]interface{}{"agribalyse_total": 539.0},
					"extraction_success": map[string]interface{}{
						"barcode": true,
					},
				},
			},
			wantErr: false,
		},
		{
			name: "null field values allowed",
			batch: map[string]interface{}{
				"300123": map[string]interface{}{
					"product_name": nil,
					"weight":       nil,
				},
			},
			wantErr: false,
		},
		{
			name:    "empty batch rejected",
			batch:   map[string]interface{}{},
			wantErr: true,
		},
		{
			name: "entry must be an object",
			batch: map[string]interface{}{
				"300123": "not an object",
			},
			wantErr: true,
		},
		{
			name: "barcode key with spaces rejected",
			batch: map[string]interface{}{
				"bad key": map[string]interface{}{},
			},
			wantErr: true,
		},
		{
			name: "wrong field type rejected",
			batch: map[string]interface{}{
				"300123": map[string]interface{}{
					"weight": "four hundred",
				},
			},
			wantErr: true,
		},
		{
			name: "brand tags must be strings",
			batch: map[string]interface{}{
				"300123": map[string]interface{}{
					"brand_tags": []interface{}{1, 2},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(tt.batch)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Equal(t, errors.ErrCodeMalformedBatchInput, err.Code)
				assert.NotEmpty(t, err.Details)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

// ==========================
// Raw JSON Tests
// ==========================

func TestValidateBatchJSON(t *testing.T) {
	t.Run("valid json batch", func(t *testing.T) {
		data := []byte(`{"3017620422003": {"product_name": "Nutella", "co2_sources": {}}}`)
		assert.Nil(t, ValidateBatchJSON(data))
	})

	t.Run("array instead of object", func(t *testing.T) {
		err := ValidateBatchJSON([]byte(`[]`))
		require.NotNil(t, err)
		assert.Equal(t, errors.ErrCodeMalformedBatchInput, err.Code)
	})

	t.Run("syntactically broken json", func(t *testing.T) {
		err := ValidateBatchJSON([]byte(`{"300123":`))
		require.NotNil(t, err)
		assert.Equal(t, errors.ErrCodeMalformedBatchInput, err.Code)
	})
}
