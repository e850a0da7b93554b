// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_products_processed_total",
			Help: "Total number of products run through the transformation pipeline",
		},
		[]string{"outcome"}, // validated, rejected, skipped_duplicate
	)

	ProductsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_products_rejected_total",
			Help: "Total number of rejected products by reason category",
		},
		[]string{"reason"},
	)

	CleaningOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_cleaning_operations_total",
			Help: "Total number of field cleaning operations applied",
		},
		[]string{"operation"},
	)

	CO2SourceSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_co2_source_selected_total",
			Help: "Total number of CO2 resolutions by winning source",
		},
		[]string{"source"},
	)

	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_batch_duration_seconds",
			Help: "Duration of batch transformation in seconds",
		},
		[]string{"stage"}, // transform, load
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_upstream_requests_total",
			Help: "Total number of upstream catalog API requests by result",
		},
		[]string{"result"}, // ok, not_found, error
	)
)
