// internal/cache/dedup_test.go
package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"food-scanner/internal/common/config"
	"food-scanner/internal/common/database"
	"food-scanner/internal/common/logger"
	"food-scanner/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() config.DedupConfig {
	return config.DedupConfig{
		Strategy:         StrategyTimeBased,
		WindowHours:      24,
		ValidatedTTLDays: 90,
		RejectedTTLDays:  7,
		PendingTTLDays:   30,
	}
}

func createTestDeduplicator(t *testing.T, cfg config.DedupConfig) (*Deduplicator, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	return NewDeduplicator(rdb, cfg, logger.NewTestLogger(t)), mr
}

func createProduct(barcode string) *models.RawProduct {
	return &models.RawProduct{
		Barcode:     barcode,
		ProductName: "Chocolat au lait",
		BrandName:   "Milka",
		Quantity:    "100g",
	}
}

// ==========================
// Time-Based Strategy Tests
// ==========================

func TestDeduplicator_TimeBased(t *testing.T) {
	d, _ := createTestDeduplicator(t, createTestConfig())
	ctx := context.Background()
	product := createProduct("3000000000001")

	// Unseen barcode is a miss.
	skip, err := d.ShouldSkip(ctx, product)
	require.NoError(t, err)
	assert.False(t, skip)

	require.NoError(t, d.MarkStatus(ctx, product, models.StatusValidated))

	// Inside the window the product is skipped.
	skip, err = d.ShouldSkip(ctx, product)
	require.NoError(t, err)
	assert.True(t, skip)

	stats := d.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Stored)
}

func TestDeduplicator_TimeBased_WindowExpired(t *testing.T) {
	d, mr := createTestDeduplicator(t, createTestConfig())
	ctx := context.Background()
	product := createProduct("3000000000001")

	// Plant an entry processed two days ago, outside the 24h window.
	stale, err := json.Marshal(entry{
		Status:      models.StatusValidated,
		ProcessedAt: time.Now().UTC().Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set(keyPrefix+product.Barcode, string(stale)))

	skip, err := d.ShouldSkip(ctx, product)
	require.NoError(t, err)
	assert.False(t, skip)
}

// ==========================
// Content-Based Strategy Tests
// ==========================

func TestDeduplicator_ContentBased(t *testing.T) {
	cfg := createTestConfig()
	cfg.Strategy = StrategyContentBased
	d, _ := createTestDeduplicator(t, cfg)
	ctx := context.Background()

	product := createProduct("3000000000001")
	require.NoError(t, d.MarkStatus(ctx, product, models.StatusValidated))

	t.Run("unchanged content skipped", func(t *testing.T) {
		skip, err := d.ShouldSkip(ctx, createProduct("3000000000001"))
		require.NoError(t, err)
		assert.True(t, skip)
	})

	t.Run("changed content reprocessed", func(t *testing.T) {
		changed := createProduct("3000000000001")
		changed.ProductName = "Chocolat noir"

		skip, err := d.ShouldSkip(ctx, changed)
		require.NoError(t, err)
		assert.False(t, skip)
	})
}

// ==========================
// Disabled Strategy Tests
// ==========================

func TestDeduplicator_Disabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.Strategy = StrategyDisabled
	d, mr := createTestDeduplicator(t, cfg)
	ctx := context.Background()
	product := createProduct("3000000000001")

	require.NoError(t, d.MarkStatus(ctx, product, models.StatusValidated))
	assert.False(t, mr.Exists(keyPrefix+product.Barcode))

	skip, err := d.ShouldSkip(ctx, product)
	require.NoError(t, err)
	assert.False(t, skip)
}

// ==========================
// TTL Tests
// ==========================

func TestDeduplicator_StatusTTLs(t *testing.T) {
	tests := []struct {
		name     string
		status   models.ProductStatus
		expected time.Duration
	}{
		{name: "validated lives long", status: models.StatusValidated, expected: 90 * 24 * time.Hour},
		{name: "rejected expires fast", status: models.StatusRejected, expected: 7 * 24 * time.Hour},
		{name: "pending in between", status: models.StatusPending, expected: 30 * 24 * time.Hour},
		{name: "unknown status falls back to pending", status: models.ProductStatus("weird"), expected: 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mr := createTestDeduplicator(t, createTestConfig())
			product := createProduct("3000000000001")

			require.NoError(t, d.MarkStatus(context.Background(), product, tt.status))
			assert.Equal(t, tt.expected, mr.TTL(keyPrefix+product.Barcode))
		})
	}
}

// ==========================
// Edge Cases
// ==========================

func TestDeduplicator_EdgeCases(t *testing.T) {
	t.Run("corrupt entry treated as miss", func(t *testing.T) {
		d, mr := createTestDeduplicator(t, createTestConfig())
		product := createProduct("3000000000001")
		require.NoError(t, mr.Set(keyPrefix+product.Barcode, "{not json"))

		skip, err := d.ShouldSkip(context.Background(), product)
		require.NoError(t, err)
		assert.False(t, skip)
	})

	t.Run("empty barcode never skipped or stored", func(t *testing.T) {
		d, _ := createTestDeduplicator(t, createTestConfig())
		product := createProduct("")

		skip, err := d.ShouldSkip(context.Background(), product)
		require.NoError(t, err)
		assert.False(t, skip)
		require.NoError(t, d.MarkStatus(context.Background(), product, models.StatusValidated))
		assert.Equal(t, 0, d.Stats().Stored)
	})

	t.Run("redis down surfaces an error", func(t *testing.T) {
		d, mr := createTestDeduplicator(t, createTestConfig())
		mr.Close()

		_, err := d.ShouldSkip(context.Background(), createProduct("3000000000001"))
		assert.Error(t, err)
	})

	t.Run("forget forces reprocessing", func(t *testing.T) {
		d, _ := createTestDeduplicator(t, createTestConfig())
		ctx := context.Background()
		product := createProduct("3000000000001")

		require.NoError(t, d.MarkStatus(ctx, product, models.StatusValidated))
		require.NoError(t, d.Forget(ctx, product.Barcode))

		skip, err := d.ShouldSkip(ctx, product)
		require.NoError(t, err)
		assert.False(t, skip)
	})
}
