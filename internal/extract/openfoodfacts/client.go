// Package openfoodfacts pulls product records from the OpenFoodFacts catalog
// and maps them onto raw field sets for the transformation pipeline.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"food-scanner/internal/common/config"
	apperrors "food-scanner/internal/common/errors"
	"food-scanner/internal/common/logger"
	"food-scanner/internal/common/metrics"
	"food-scanner/internal/models"
)

const defaultUserAgent = "food-scanner/1.0"

// Client is a rate-limited OpenFoodFacts API client with bounded retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	logger     logger.Logger
}

func NewClient(cfg config.OpenFoodFactsConfig, log logger.Logger) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.GetDuration(cfg.Timeout)},
		baseURL:    cfg.BaseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		maxRetries: cfg.MaxRetries,
		logger:     log,
	}
}

type productResponse struct {
	Status  int                    `json:"status"`
	Product map[string]interface{} `json:"product"`
}

// FetchProduct retrieves and maps one product by barcode. Transient upstream
// failures are retried with linear backoff; a missing product is terminal.
func (c *Client) FetchProduct(ctx context.Context, barcode string) (*models.RawProduct, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, err := c.fetchOnce(ctx, barcode)
		if err == nil {
			metrics.UpstreamRequests.WithLabelValues("ok").Inc()
			return MapProduct(raw), nil
		}

		if stdErr, ok := err.(*apperrors.StandardError); ok && !stdErr.Retryable {
			metrics.UpstreamRequests.WithLabelValues("not_found").Inc()
			return nil, err
		}

		lastErr = err
		c.logger.WithError(err).Warn("upstream fetch failed, retrying", map[string]interface{}{
			"barcode": barcode,
			"attempt": attempt + 1,
		})
	}

	metrics.UpstreamRequests.WithLabelValues("error").Inc()
	return nil, apperrors.NewUpstreamAPIFailedError(lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, barcode string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewProductNotFoundError(barcode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", barcode, err)
	}
	if parsed.Status != 1 || parsed.Product == nil {
		return nil, apperrors.NewProductNotFoundError(barcode)
	}

	return parsed.Product, nil
}

// FetchBatch retrieves many barcodes sequentially, honoring the rate limit.
// Missing products are skipped; other failures abort.
func (c *Client) FetchBatch(ctx context.Context, barcodes []string) (models.RawBatch, error) {
	batch := models.RawBatch{}
	for _, barcode := range barcodes {
		product, err := c.FetchProduct(ctx, barcode)
		if err != nil {
			if stdErr, ok := err.(*apperrors.StandardError); ok && stdErr.Code == apperrors.ErrCodeProductNotFound {
				c.logger.Warn("product not in catalog, skipping", map[string]interface{}{
					"barcode": barcode,
				})
				continue
			}
			return nil, err
		}
		batch[product.Barcode] = product
	}
	return batch, nil
}
