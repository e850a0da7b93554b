// cmd/pipeline-runner/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"food-scanner/internal/cache"
	"food-scanner/internal/common/config"
	"food-scanner/internal/common/database"
	"food-scanner/internal/common/logger"
	"food-scanner/internal/extract/openfoodfacts"
	"food-scanner/internal/load"
	"food-scanner/internal/transform"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	var (
		inputPath   = flag.String("input", "", "path to a raw batch JSON file (barcode-keyed)")
		barcodeList = flag.String("barcodes", "", "comma-separated barcodes to fetch from the upstream catalog")
		reportPath  = flag.String("report", "", "write the quality report JSON here (default stdout)")
		metricsAddr = flag.String("metrics-addr", "", "expose Prometheus metrics on this address during the run")
		skipLoad    = flag.Bool("skip-load", false, "transform only, do not write to the database")
	)
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting pipeline runner...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()

	// --- Init Redis with retry (dedup cache; optional) ---
	var dedup transform.DedupChecker
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Warn("redis unavailable, deduplication disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		dedup = cache.NewDeduplicator(redisClient, cfg.Pipeline.Dedup, log)
		zapLog.Info("Redis connected successfully")
	}

	pipeline, err := transform.New(&cfg.Pipeline, dedup, log)
	if err != nil {
		zapLog.Fatal("pipeline init failed", zap.Error(err))
	}

	// --- Acquire and transform ---
	var result *transform.Result
	switch {
	case *inputPath != "":
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			zapLog.Fatal("input read failed", zap.Error(err))
		}
		// File input goes through structural validation: a malformed
		// batch aborts before any item is touched.
		result, err = pipeline.TransformJSON(ctx, data)
		if err != nil {
			zapLog.Fatal("transformation failed", zap.Error(err))
		}
	case *barcodeList != "":
		var barcodes []string
		for _, b := range strings.Split(*barcodeList, ",") {
			if b = strings.TrimSpace(b); b != "" {
				barcodes = append(barcodes, b)
			}
		}
		client := openfoodfacts.NewClient(cfg.OpenFoodFacts, log)
		batch, err := client.FetchBatch(ctx, barcodes)
		if err != nil {
			zapLog.Fatal("extraction failed", zap.Error(err))
		}
		result, err = pipeline.Transform(ctx, batch)
		if err != nil {
			zapLog.Fatal("transformation failed", zap.Error(err))
		}
	default:
		zapLog.Fatal("no products to process; pass -input or -barcodes")
	}

	// --- Load ---
	if !*skipLoad && len(result.Validated) > 0 {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		loader := load.NewLoader(pg, cfg.Pipeline.BatchSize, cfg.Pipeline.LoadMaxRetries, log)
		if _, err := loader.Load(ctx, result.Validated); err != nil {
			zapLog.Fatal("load failed", zap.Error(err))
		}
	}

	if err := writeReport(result, *reportPath); err != nil {
		zapLog.Fatal("report write failed", zap.Error(err))
	}

	zapLog.Info("pipeline run complete",
		zap.Int("validated", result.Stats.Validated),
		zap.Int("rejected", result.Stats.Rejected),
		zap.Int("skipped", result.Stats.SkippedDuplicates),
		zap.String("quality_grade", result.Report.Grade),
	)
}

func writeReport(result *transform.Result, path string) error {
	report := map[string]interface{}{
		"stats":   result.Stats,
		"quality": result.Report,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
