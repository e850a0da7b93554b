// Package cache implements the Redis-backed deduplication layer that keeps
// recently processed products from being transformed again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"food-scanner/internal/common/config"
	"food-scanner/internal/common/database"
	"food-scanner/internal/common/logger"
	"food-scanner/internal/models"
)

// Strategy names accepted by the deduplicator.
const (
	StrategyTimeBased    = "time_based"
	StrategyContentBased = "content_based"
	StrategyDisabled     = "disabled"
)

const keyPrefix = "dedup:"

// entry is the cached record for one processed barcode.
type entry struct {
	Status      models.ProductStatus `json:"status"`
	ProcessedAt time.Time            `json:"processed_at"`
	ContentHash string               `json:"content_hash,omitempty"`
}

// Stats counts cache behavior across one deduplicator's lifetime.
type Stats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Stored int `json:"stored"`
}

// Deduplicator skips products that were already processed recently. TTLs are
// status-differentiated: validated records live long, rejected ones expire
// fast so upstream fixes get picked up.
type Deduplicator struct {
	redis    *database.RedisClient
	strategy string
	window   time.Duration
	ttls     map[models.ProductStatus]time.Duration
	logger   logger.Logger
	stats    Stats
}

func NewDeduplicator(rdb *database.RedisClient, cfg config.DedupConfig, log logger.Logger) *Deduplicator {
	return &Deduplicator{
		redis:    rdb,
		strategy: cfg.Strategy,
		window:   time.Duration(cfg.WindowHours) * time.Hour,
		ttls: map[models.ProductStatus]time.Duration{
			models.StatusValidated: time.Duration(cfg.ValidatedTTLDays) * 24 * time.Hour,
			models.StatusRejected:  time.Duration(cfg.RejectedTTLDays) * 24 * time.Hour,
			models.StatusPending:   time.Duration(cfg.PendingTTLDays) * 24 * time.Hour,
		},
		logger: log,
	}
}

// ShouldSkip reports whether the product's barcode was processed recently
// enough, per the configured strategy, to skip this time.
func (d *Deduplicator) ShouldSkip(ctx context.Context, product *models.RawProduct) (bool, error) {
	if d.strategy == StrategyDisabled || product.Barcode == "" {
		return false, nil
	}

	raw, err := d.redis.Get(ctx, keyPrefix+product.Barcode)
	if err == redis.Nil {
		d.stats.Misses++
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dedup lookup for %s: %w", product.Barcode, err)
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		// A corrupt entry is treated as a miss and will be overwritten.
		d.stats.Misses++
		return false, nil
	}

	switch d.strategy {
	case StrategyTimeBased:
		if time.Since(e.ProcessedAt) < d.window {
			d.stats.Hits++
			return true, nil
		}
	case StrategyContentBased:
		if e.ContentHash != "" && e.ContentHash == contentHash(product) {
			d.stats.Hits++
			return true, nil
		}
	}

	d.stats.Misses++
	return false, nil
}

// MarkStatus stores the processing outcome with the TTL that matches it.
func (d *Deduplicator) MarkStatus(ctx context.Context, product *models.RawProduct, status models.ProductStatus) error {
	if d.strategy == StrategyDisabled || product.Barcode == "" {
		return nil
	}

	e := entry{
		Status:      status,
		ProcessedAt: time.Now().UTC(),
		ContentHash: contentHash(product),
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("dedup entry for %s: %w", product.Barcode, err)
	}

	ttl, ok := d.ttls[status]
	if !ok {
		ttl = d.ttls[models.StatusPending]
	}

	if err := d.redis.Set(ctx, keyPrefix+product.Barcode, string(data), ttl); err != nil {
		return fmt.Errorf("dedup store for %s: %w", product.Barcode, err)
	}
	d.stats.Stored++
	return nil
}

// Forget drops the cache entry for a barcode, forcing reprocessing.
func (d *Deduplicator) Forget(ctx context.Context, barcode string) error {
	return d.redis.Del(ctx, keyPrefix+barcode)
}

// Stats returns a copy of the running counters.
func (d *Deduplicator) Stats() Stats {
	return d.stats
}

// contentHash fingerprints the fields whose change should trigger
// reprocessing under the content-based strategy.
func contentHash(product *models.RawProduct) string {
	data, err := json.Marshal(map[string]interface{}{
		"product_name": product.ProductName,
		"brand_name":   product.BrandName,
		"quantity":     product.Quantity,
		"weight":       product.Weight,
		"nutriscore":   product.NutriScoreGrade,
		"co2":          product.CO2Sources,
	})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
