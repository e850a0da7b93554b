// Package validation checks the structure of raw batch input before any
// per-item transformation runs. A batch that fails here is rejected whole.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"food-scanner/internal/common/errors"
)

// batchSchema describes a raw batch: an object keyed by barcode whose values
// are extracted field maps. Per-field content problems are the transformers'
// business; only the container shape is enforced here.
const batchSchema = `{
	"type": "object",
	"minProperties": 1,
	"patternProperties": {
		"^[0-9A-Za-z_-]+$": {
			"type": "object",
			"properties": {
				"barcode":            {"type": ["string", "null"]},
				"product_name":       {"type": ["string", "null"]},
				"brand_name":         {"type": ["string", "null"]},
				"brand_tags":         {"type": "array", "items": {"type": "string"}},
				"quantity":           {"type": ["string", "null"]},
				"weight":             {"type": ["number", "null"]},
				"weight_unit":        {"type": ["string", "null"]},
				"nutriscore_grade":   {"type": ["string", "null"]},
				"nutriscore_score":   {"type": ["number", "null"]},
				"eco_score":          {"type": ["string", "null"]},
				"co2_sources":        {"type": "object"},
				"extraction_success": {"type": "object"}
			}
		}
	},
	"additionalProperties": false
}`

// ValidateBatch validates a decoded raw batch against the batch schema.
// Returns a MALFORMED_BATCH_INPUT error listing every violation.
func ValidateBatch(batch map[string]interface{}) *errors.StandardError {
	schemaLoader := gojsonschema.NewStringLoader(batchSchema)
	documentLoader := gojsonschema.NewGoLoader(batch)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewMalformedBatchInputError(err.Error())
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewMalformedBatchInputError(strings.Join(errs, "; "))
	}

	return nil
}

// ValidateBatchJSON validates raw JSON bytes without decoding them first.
func ValidateBatchJSON(data []byte) *errors.StandardError {
	schemaLoader := gojsonschema.NewStringLoader(batchSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewMalformedBatchInputError(err.Error())
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewMalformedBatchInputError(strings.Join(errs, "; "))
	}

	return nil
}
