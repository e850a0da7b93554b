// internal/load/loader_test.go
package load

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-scanner/internal/common/database"
	"food-scanner/internal/common/logger"
	"food-scanner/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func f(v float64) *float64 { return &v }

func createTestLoader(t *testing.T, batchSize, maxRetries int) (*Loader, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := &database.PostgresClient{DB: db}
	return NewLoader(client, batchSize, maxRetries, logger.NewTestLogger(t)), mock
}

func createProduct(barcode string) *models.NormalizedProduct {
	now := time.Now().UTC()
	return &models.NormalizedProduct{
		Barcode:         barcode,
		ProductName:     "Chocolat au lait",
		BrandName:       "Milka",
		BrandTags:       []string{"milka"},
		WeightGrams:     f(100),
		NutriScoreGrade: "D",
		CO2Per100g:      f(270),
		CO2Source:       "agribalyse_total",
		CO2TotalGrams:   f(270),
		Transport:       &models.TransportEquivalents{CarKm: 2.25, TrainKm: 19.286, BusKm: 3.971, PlaneKm: 1.059},
		ImpactLevel:     "LOW",
		Metadata: models.ProductMetadata{
			CreatedAt:             now,
			UpdatedAt:             now,
			CacheExpiresAt:        now.Add(models.CacheLifetime),
			TransformationVersion: models.TransformationVersion,
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestLoader_Load_Success(t *testing.T) {
	loader, mock := createTestLoader(t, 50, 1)

	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))

	stats, err := loader.Load(context.Background(), []*models.NormalizedProduct{
		createProduct("3000000000001"),
		createProduct("3000000000002"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.BatchesProcessed)
	assert.Equal(t, 2, stats.SuccessfulLoads)
	assert.Equal(t, 0, stats.FailedLoads)
	assert.Equal(t, 0, stats.RetryCount)
	assert.Empty(t, stats.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Load_Chunking(t *testing.T) {
	loader, mock := createTestLoader(t, 2, 1)

	for i := 0; i < 5; i++ {
		mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))
	}

	products := []*models.NormalizedProduct{
		createProduct("1"), createProduct("2"), createProduct("3"),
		createProduct("4"), createProduct("5"),
	}
	stats, err := loader.Load(context.Background(), products)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.BatchesProcessed)
	assert.Equal(t, 5, stats.SuccessfulLoads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Load_EmptyInput(t *testing.T) {
	loader, mock := createTestLoader(t, 50, 1)

	stats, err := loader.Load(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.BatchesProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Retry Tests
// ==========================

func TestLoader_Load_RetriesThenSucceeds(t *testing.T) {
	loader, mock := createTestLoader(t, 50, 2)

	mock.ExpectExec(`INSERT INTO products`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))

	stats, err := loader.Load(context.Background(), []*models.NormalizedProduct{createProduct("1")})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SuccessfulLoads)
	assert.Equal(t, 0, stats.FailedLoads)
	assert.Equal(t, 1, stats.RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Load_FailingChunkDoesNotAbortRun(t *testing.T) {
	loader, mock := createTestLoader(t, 1, 1)

	mock.ExpectExec(`INSERT INTO products`).WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))

	stats, err := loader.Load(context.Background(), []*models.NormalizedProduct{
		createProduct("1"),
		createProduct("2"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.BatchesProcessed)
	assert.Equal(t, 1, stats.SuccessfulLoads)
	assert.Equal(t, 1, stats.FailedLoads)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "DATABASE_UPSERT_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Load_ContextCancelledDuringBackoff(t *testing.T) {
	loader, mock := createTestLoader(t, 50, 3)

	mock.ExpectExec(`INSERT INTO products`).WillReturnError(errors.New("down"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := loader.Load(ctx, []*models.NormalizedProduct{createProduct("1")})
	require.NoError(t, err)

	// The chunk gives up on the cancelled context and counts as failed.
	assert.Equal(t, 1, stats.FailedLoads)
	require.Len(t, stats.Errors, 1)
}

// ==========================
// Argument Mapping Tests
// ==========================

func TestLoader_Load_MinimalProduct(t *testing.T) {
	// A product without weight or derived metrics upserts with NULLs rather
	// than zero values.
	loader, mock := createTestLoader(t, 50, 1)

	product := &models.NormalizedProduct{
		Barcode:         "3000000000001",
		ProductName:     "Mystery snack",
		BrandName:       "Oreo",
		NutriScoreGrade: "C",
		CO2Per100g:      f(120),
		CO2Source:       "nutriments_carbon_footprint",
		Metadata: models.ProductMetadata{
			CreatedAt:             time.Now().UTC(),
			UpdatedAt:             time.Now().UTC(),
			CacheExpiresAt:        time.Now().UTC().Add(models.CacheLifetime),
			TransformationVersion: models.TransformationVersion,
		},
	}

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(
			"3000000000001", "Mystery snack", "Oreo", sqlmock.AnyArg(),
			nil, "C", nil, nil,
			120.0, "nutriments_carbon_footprint", nil,
			nil, nil, nil, nil, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), models.TransformationVersion,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stats, err := loader.Load(context.Background(), []*models.NormalizedProduct{product})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SuccessfulLoads)
	assert.NoError(t, mock.ExpectationsWereMet())
}
