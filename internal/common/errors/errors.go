// Package errors provides standardized error handling for the transformation pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Batch / data shape errors
	ErrCodeMalformedBatchInput ErrorCode = "MALFORMED_BATCH_INPUT"
	ErrCodeParseFailure        ErrorCode = "PARSE_FAILURE"
	ErrCodeOutOfRangeValue     ErrorCode = "OUT_OF_RANGE_VALUE"
	ErrCodeCriticalFieldMissing ErrorCode = "CRITICAL_FIELD_MISSING"

	// Reference data errors
	ErrCodeBrandTableLoadFailed ErrorCode = "BRAND_TABLE_LOAD_FAILED"

	// Database errors
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseUpsertFailed     ErrorCode = "DATABASE_UPSERT_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	// Cache errors
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	// Upstream product API errors
	ErrCodeUpstreamAPIFailed  ErrorCode = "UPSTREAM_API_FAILED"
	ErrCodeUpstreamAPITimeout ErrorCode = "UPSTREAM_API_TIMEOUT"
	ErrCodeProductNotFound    ErrorCode = "PRODUCT_NOT_FOUND"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMalformedBatchInputError creates a non-retryable batch structure error.
// A malformed batch aborts processing before any item is touched.
func NewMalformedBatchInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedBatchInput,
		Message:   "Raw batch input failed structural validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseFailureError creates a non-retryable per-field parse error.
// Callers record it as a quality issue; it never aborts an item.
func NewParseFailureError(field, rawValue string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseFailure,
		Message:   "Field value could not be parsed",
		Details:   fmt.Sprintf("field: %s, raw: %q", field, rawValue),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOutOfRangeValueError creates a non-retryable range violation error.
func NewOutOfRangeValueError(field string, value float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutOfRangeValue,
		Message:   "Field value outside plausible range",
		Details:   fmt.Sprintf("field: %s, value: %g", field, value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCriticalFieldMissingError creates a non-retryable rejection-grade error.
func NewCriticalFieldMissingError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCriticalFieldMissing,
		Message:   "Required field missing from extracted data",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBrandTableLoadFailedError creates a non-retryable reference data error.
func NewBrandTableLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrandTableLoadFailed,
		Message:   "Brand reference tables could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseUpsertFailedError creates a retryable upsert error.
func NewDatabaseUpsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseUpsertFailed,
		Message:   "Product upsert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. The pipeline
// degrades to cache-less operation rather than failing the batch.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Deduplication cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamAPIFailedError creates a retryable upstream API error.
func NewUpstreamAPIFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamAPIFailed,
		Message:   "Product API request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamAPITimeoutError creates a retryable upstream timeout error.
func NewUpstreamAPITimeoutError(barcode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamAPITimeout,
		Message:   "Product API request timed out",
		Details:   fmt.Sprintf("barcode: %s", barcode),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProductNotFoundError creates a non-retryable not-found error.
func NewProductNotFoundError(barcode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductNotFound,
		Message:   "Product not found in upstream catalog",
		Details:   fmt.Sprintf("barcode: %s", barcode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Configuration validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseUpsertFailed,
		ErrCodeUpstreamAPIFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeUpstreamAPITimeout,
		ErrCodeCacheUnavailable:
		return 2

	default:
		return 0 // Data-quality errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BATCH") || strings.Contains(codeStr, "PARSE") ||
		strings.Contains(codeStr, "RANGE") || strings.Contains(codeStr, "FIELD"):
		return "DATA_QUALITY"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "UPSTREAM") || strings.Contains(codeStr, "PRODUCT_NOT_FOUND"):
		return "UPSTREAM_API"
	case strings.Contains(codeStr, "CONFIG") || strings.Contains(codeStr, "BRAND_TABLE"):
		return "CONFIGURATION"
	default:
		return "OTHER"
	}
}
