// Package load writes transformed products into PostgreSQL with idempotent
// batch upserts keyed on barcode.
package load

import (
	"context"
	"time"

	"github.com/lib/pq"

	"food-scanner/internal/common/database"
	apperrors "food-scanner/internal/common/errors"
	"food-scanner/internal/common/logger"
	"food-scanner/internal/common/metrics"
	"food-scanner/internal/models"
)

const upsertQuery = `
	INSERT INTO products (
		barcode, product_name, brand_name, brand_tags,
		weight_grams, nutriscore_grade, nutriscore_score, eco_score,
		co2_per_100g, co2_source, co2_total_grams,
		km_by_car, km_by_train, km_by_bus, km_by_plane, impact_level,
		created_at, updated_at, cache_expires_at, transformation_version
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	ON CONFLICT (barcode) DO UPDATE SET
		product_name = EXCLUDED.product_name,
		brand_name = EXCLUDED.brand_name,
		brand_tags = EXCLUDED.brand_tags,
		weight_grams = EXCLUDED.weight_grams,
		nutriscore_grade = EXCLUDED.nutriscore_grade,
		nutriscore_score = EXCLUDED.nutriscore_score,
		eco_score = EXCLUDED.eco_score,
		co2_per_100g = EXCLUDED.co2_per_100g,
		co2_source = EXCLUDED.co2_source,
		co2_total_grams = EXCLUDED.co2_total_grams,
		km_by_car = EXCLUDED.km_by_car,
		km_by_train = EXCLUDED.km_by_train,
		km_by_bus = EXCLUDED.km_by_bus,
		km_by_plane = EXCLUDED.km_by_plane,
		impact_level = EXCLUDED.impact_level,
		updated_at = EXCLUDED.updated_at,
		cache_expires_at = EXCLUDED.cache_expires_at,
		transformation_version = EXCLUDED.transformation_version`

// Stats accumulates the outcome of one load run.
type Stats struct {
	BatchesProcessed int           `json:"batches_processed"`
	SuccessfulLoads  int           `json:"successful_loads"`
	FailedLoads      int           `json:"failed_loads"`
	RetryCount       int           `json:"retry_count"`
	TotalDuration    time.Duration `json:"total_duration"`
	Errors           []string      `json:"errors,omitempty"`
}

// Loader upserts normalized products in configurable chunks with bounded
// per-chunk retries.
type Loader struct {
	db         *database.PostgresClient
	batchSize  int
	maxRetries int
	logger     logger.Logger
}

func NewLoader(db *database.PostgresClient, batchSize, maxRetries int, log logger.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Loader{db: db, batchSize: batchSize, maxRetries: maxRetries, logger: log}
}

// Load upserts all products, chunk by chunk. A chunk that keeps failing after
// the retry budget counts its products as failed and the run continues.
func (l *Loader) Load(ctx context.Context, products []*models.NormalizedProduct) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	for from := 0; from < len(products); from += l.batchSize {
		to := from + l.batchSize
		if to > len(products) {
			to = len(products)
		}
		chunk := products[from:to]
		stats.BatchesProcessed++

		if err := l.loadChunk(ctx, chunk, stats); err != nil {
			stats.FailedLoads += len(chunk)
			stats.Errors = append(stats.Errors, err.Error())
			l.logger.WithError(err).Error("chunk load failed after retries", map[string]interface{}{
				"chunk_start": from,
				"chunk_size":  len(chunk),
			})
			continue
		}
		stats.SuccessfulLoads += len(chunk)
	}

	stats.TotalDuration = time.Since(start)
	metrics.BatchDuration.WithLabelValues("load").Observe(stats.TotalDuration.Seconds())

	l.logger.Info("load run finished", map[string]interface{}{
		"batches":    stats.BatchesProcessed,
		"loaded":     stats.SuccessfulLoads,
		"failed":     stats.FailedLoads,
		"retries":    stats.RetryCount,
		"duration_ms": stats.TotalDuration.Milliseconds(),
	})

	return stats, nil
}

func (l *Loader) loadChunk(ctx context.Context, chunk []*models.NormalizedProduct, stats *Stats) error {
	var lastErr error
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		if attempt > 0 {
			stats.RetryCount++
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		lastErr = l.upsertAll(ctx, chunk)
		if lastErr == nil {
			return nil
		}
	}
	return apperrors.NewDatabaseUpsertFailedError(lastErr)
}

func (l *Loader) upsertAll(ctx context.Context, chunk []*models.NormalizedProduct) error {
	for _, p := range chunk {
		var transport models.TransportEquivalents
		if p.Transport != nil {
			transport = *p.Transport
		}

		_, err := l.db.Exec(ctx, upsertQuery,
			p.Barcode,
			p.ProductName,
			p.BrandName,
			pq.Array(p.BrandTags),
			p.WeightGrams,
			nullableString(p.NutriScoreGrade),
			p.NutriScoreScore,
			nullableString(p.EcoScore),
			p.CO2Per100g,
			nullableString(p.CO2Source),
			p.CO2TotalGrams,
			nullableFloat(p.Transport != nil, transport.CarKm),
			nullableFloat(p.Transport != nil, transport.TrainKm),
			nullableFloat(p.Transport != nil, transport.BusKm),
			nullableFloat(p.Transport != nil, transport.PlaneKm),
			nullableString(p.ImpactLevel),
			p.Metadata.CreatedAt,
			p.Metadata.UpdatedAt,
			p.Metadata.CacheExpiresAt,
			p.Metadata.TransformationVersion,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(present bool, v float64) interface{} {
	if !present {
		return nil
	}
	return v
}
