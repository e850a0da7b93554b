// internal/models/product.go
package models

import "time"

// TransformationVersion tags every produced record with the transformation
// contract it was built under.
const TransformationVersion = "1.0"

// CacheLifetime is how long a validated record stays fresh before it should
// be re-collected from the upstream catalog.
const CacheLifetime = 30 * 24 * time.Hour

// TransportEquivalents expresses a product's total carbon footprint as the
// distance the same emissions would cover per transport mode, in km.
type TransportEquivalents struct {
	CarKm   float64 `json:"km_by_car"`
	TrainKm float64 `json:"km_by_train"`
	BusKm   float64 `json:"km_by_bus"`
	PlaneKm float64 `json:"km_by_plane"`
}

// NormalizedProduct is a fully transformed, validated catalog record ready
// for loading.
type NormalizedProduct struct {
	Barcode     string   `json:"barcode"`
	ProductName string   `json:"product_name"`
	BrandName   string   `json:"brand_name"`
	BrandTags   []string `json:"brand_tags,omitempty"`

	WeightGrams    *float64 `json:"weight_grams,omitempty"`
	WeightOriginal string   `json:"weight_original,omitempty"`

	NutriScoreGrade string   `json:"nutriscore_grade,omitempty"`
	NutriScoreScore *float64 `json:"nutriscore_score,omitempty"`
	EcoScore        string   `json:"eco_score,omitempty"`

	CO2Per100g *float64 `json:"co2_per_100g,omitempty"`
	CO2Source  string   `json:"co2_source,omitempty"`

	// Derived fields: either all present or all absent.
	CO2TotalGrams *float64              `json:"co2_total_grams,omitempty"`
	Transport     *TransportEquivalents `json:"transport_equivalents,omitempty"`
	ImpactLevel   string                `json:"impact_level,omitempty"`

	// QualityIssues lists non-fatal problems observed during transformation
	// (parse failures, out-of-range values).
	QualityIssues []string `json:"quality_issues,omitempty"`

	Metadata ProductMetadata `json:"metadata"`

	// Raw preserves the source record for audit and reprocessing.
	Raw *RawProduct `json:"raw,omitempty"`
}

// ProductMetadata carries lifecycle bookkeeping for a transformed record.
type ProductMetadata struct {
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	CacheExpiresAt        time.Time `json:"cache_expires_at"`
	CollectionTimestamp   string    `json:"collection_timestamp,omitempty"`
	TransformationVersion string    `json:"transformation_version"`
	RunID                 string    `json:"run_id,omitempty"`
}

// RejectedProduct records a product that failed validation, with every
// applicable reason in rule order.
type RejectedProduct struct {
	Barcode    string      `json:"barcode"`
	Reasons    []string    `json:"rejection_reasons"`
	RejectedAt time.Time   `json:"rejected_at"`
	Raw        *RawProduct `json:"raw,omitempty"`
}

// ProductStatus is the lifecycle status tracked by the deduplication cache.
type ProductStatus string

const (
	StatusValidated ProductStatus = "validated"
	StatusRejected  ProductStatus = "rejected"
	StatusPending   ProductStatus = "pending"
)
