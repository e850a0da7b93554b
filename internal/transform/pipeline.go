// Package transform orchestrates the per-product transformation sequence and
// the batch-level bookkeeping around it.
package transform

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"food-scanner/internal/common/config"
	apperrors "food-scanner/internal/common/errors"
	"food-scanner/internal/common/logger"
	"food-scanner/internal/common/metrics"
	"food-scanner/internal/common/validation"
	"food-scanner/internal/models"
	"food-scanner/internal/transform/brand"
	"food-scanner/internal/transform/co2"
	"food-scanner/internal/transform/derived"
	"food-scanner/internal/transform/nutriscore"
	"food-scanner/internal/transform/quality"
	"food-scanner/internal/transform/quantity"
	"food-scanner/internal/transform/units"
	"food-scanner/internal/transform/validate"
)

// DedupChecker decides whether a product was processed recently enough to
// skip, and records the outcome status for future batches. Implementations
// see the whole raw record so content-based strategies can hash it.
type DedupChecker interface {
	ShouldSkip(ctx context.Context, product *models.RawProduct) (bool, error)
	MarkStatus(ctx context.Context, product *models.RawProduct, status models.ProductStatus) error
}

// Stats is the explicit per-run accumulator. No global state: each run gets
// its own instance, identified by RunID.
type Stats struct {
	RunID             string                    `json:"run_id"`
	Processed         int                       `json:"processed"`
	Validated         int                       `json:"validated"`
	Rejected          int                       `json:"rejected"`
	SkippedDuplicates int                       `json:"skipped_duplicates"`
	Rejections        models.RejectionBreakdown `json:"rejection_breakdown"`
	CleaningOps       map[string]int            `json:"cleaning_operations"`
	CO2Sources        map[string]int            `json:"co2_sources"`
	Duration          time.Duration             `json:"duration"`
}

// Result is the partition a batch run always produces, even at 100%
// rejection.
type Result struct {
	Validated []*models.NormalizedProduct
	Rejected  []*models.RejectedProduct
	Report    *models.QualityReport
	Stats     *Stats
}

// Pipeline runs the transformation sequence over raw batches.
type Pipeline struct {
	brands      *brand.Canonicalizer
	co2Resolver *co2.Resolver
	scorer      *quality.Scorer
	weightRange config.ValueRangeConfig
	dedup       DedupChecker
	logger      logger.Logger
}

// New wires a pipeline from loaded configuration. dedup may be nil to
// disable duplicate skipping.
func New(cfg *config.PipelineConfig, dedup DedupChecker, log logger.Logger) (*Pipeline, error) {
	tables, err := brand.LoadTables(cfg.BrandTablePath)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		brands:      brand.NewCanonicalizer(tables),
		co2Resolver: co2.NewResolver(co2.Range{Min: cfg.CO2Range.Min, Max: cfg.CO2Range.Max}),
		scorer:      quality.NewScorer(quality.DefaultWeights),
		weightRange: cfg.WeightRange,
		dedup:       dedup,
		logger:      log,
	}, nil
}

// TransformJSON validates raw batch JSON structurally, decodes it and runs
// the batch. A malformed batch aborts before any item is processed.
func (p *Pipeline) TransformJSON(ctx context.Context, data []byte) (*Result, error) {
	if err := validation.ValidateBatchJSON(data); err != nil {
		return nil, err
	}

	var batch models.RawBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, apperrors.NewMalformedBatchInputError(err.Error())
	}

	return p.Transform(ctx, batch)
}

// Transform maps the batch through the transformation sequence. Individual
// item failures become rejections; only infrastructure-free pure steps run
// here, so the batch itself cannot fail.
func (p *Pipeline) Transform(ctx context.Context, batch models.RawBatch) (*Result, error) {
	start := time.Now()
	stats := &Stats{
		RunID:       uuid.NewString(),
		CleaningOps: map[string]int{},
		CO2Sources:  map[string]int{},
	}
	result := &Result{Stats: stats}

	log := p.logger.WithFields(map[string]interface{}{
		"run_id":     stats.RunID,
		"batch_size": len(batch),
	})
	log.Info("batch transformation started", nil)

	var samples []quality.Sample
	for _, raw := range batch {
		if p.skipDuplicate(ctx, raw) {
			stats.SkippedDuplicates++
			metrics.ProductsProcessed.WithLabelValues("skipped_duplicate").Inc()
			continue
		}

		stats.Processed++
		product, rejected, sample := p.transformOne(raw, stats)
		samples = append(samples, sample)

		if rejected != nil {
			stats.Rejected++
			result.Rejected = append(result.Rejected, rejected)
			metrics.ProductsProcessed.WithLabelValues("rejected").Inc()
			for _, reason := range rejected.Reasons {
				category := validate.CategorizeReason(reason)
				countRejection(&stats.Rejections, category)
				metrics.ProductsRejected.WithLabelValues(category).Inc()
			}
			p.markStatus(ctx, raw, models.StatusRejected)
			continue
		}

		product.Metadata.RunID = stats.RunID
		stats.Validated++
		result.Validated = append(result.Validated, product)
		metrics.ProductsProcessed.WithLabelValues("validated").Inc()
		p.markStatus(ctx, raw, models.StatusValidated)
	}

	stats.Duration = time.Since(start)
	metrics.BatchDuration.WithLabelValues("transform").Observe(stats.Duration.Seconds())

	result.Report = p.scorer.Score(samples)

	log.Info("batch transformation finished", map[string]interface{}{
		"validated":          stats.Validated,
		"rejected":           stats.Rejected,
		"skipped_duplicates": stats.SkippedDuplicates,
		"duration_ms":        stats.Duration.Milliseconds(),
		"quality_grade":      result.Report.Grade,
	})

	return result, nil
}

// transformOne runs the full sequence for a single product. Returns either a
// normalized product or a rejection, never both, plus the quality sample.
func (p *Pipeline) transformOne(raw *models.RawProduct, stats *Stats) (*models.NormalizedProduct, *models.RejectedProduct, quality.Sample) {
	var issues []string

	// Weight: prefer the pre-parsed value, fall back to the free-text
	// quantity string.
	weightGrams, weightOriginal, quantityParsed, weightIssues := p.normalizeWeight(raw)
	issues = append(issues, weightIssues...)

	// Brand
	canonicalBrand, trace := p.brands.Canonicalize(raw.BrandName)
	for _, op := range trace.Operations() {
		stats.CleaningOps[op]++
		metrics.CleaningOperations.WithLabelValues(op).Inc()
	}

	// CO2
	resolution := p.co2Resolver.Resolve(raw.CO2Sources)
	issues = append(issues, resolution.Issues...)
	if resolution.Source != "" {
		stats.CO2Sources[resolution.Source]++
		metrics.CO2SourceSelected.WithLabelValues(resolution.Source).Inc()
	}

	// Nutriscore
	grade := nutriscore.NormalizeGrade(raw.NutriScoreGrade)
	if raw.NutriScoreGrade != "" && grade == "" {
		issues = append(issues, "invalid nutriscore grade: "+raw.NutriScoreGrade)
	}
	score := nutriscore.NormalizeScore(raw.NutriScoreScore)
	if raw.NutriScoreScore != nil && score == nil {
		issues = append(issues, "nutriscore score out of range")
	}
	ecoScore := nutriscore.NormalizeEcoScore(raw.EcoScore)

	// Validation verdict
	outcome := validate.Check(validate.Input{
		Raw:         raw,
		CO2Resolved: resolution.Value != nil,
		NutriGrade:  grade,
		NutriScore:  score,
		WeightGrams: weightGrams,
	})

	sample := quality.Sample{
		QuantityParsed: quantityParsed,
		Validated:      outcome.Valid,
		Fields: map[string]quality.FieldObservation{
			"barcode":      presentAndValid(raw.FieldExtracted("barcode") && raw.Barcode != ""),
			"product_name": presentAndValid(raw.FieldExtracted("product_name") && raw.ProductName != ""),
			"brand_name": {
				Present: raw.FieldExtracted("brand_name") && raw.BrandName != "",
				Valid:   canonicalBrand != "",
			},
			"weight":     presentAndValid(weightGrams != nil),
			"co2_total":  presentAndValid(resolution.Value != nil),
			"nutriscore": presentAndValid(grade != "" || score != nil),
		},
	}

	if !outcome.Valid {
		return nil, &models.RejectedProduct{
			Barcode:    raw.Barcode,
			Reasons:    outcome.Reasons,
			RejectedAt: time.Now().UTC(),
			Raw:        raw,
		}, sample
	}

	now := time.Now().UTC()
	product := &models.NormalizedProduct{
		Barcode:         raw.Barcode,
		ProductName:     strings.TrimSpace(raw.ProductName),
		BrandName:       canonicalBrand,
		BrandTags:       raw.BrandTags,
		WeightGrams:     weightGrams,
		WeightOriginal:  weightOriginal,
		NutriScoreGrade: grade,
		NutriScoreScore: score,
		EcoScore:        ecoScore,
		CO2Per100g:      resolution.Value,
		CO2Source:       resolution.Source,
		QualityIssues:   append(issues, outcome.Warnings...),
		Metadata: models.ProductMetadata{
			CreatedAt:             now,
			UpdatedAt:             now,
			CacheExpiresAt:        now.Add(models.CacheLifetime),
			CollectionTimestamp:   raw.CollectionTimestamp,
			TransformationVersion: models.TransformationVersion,
		},
		Raw: raw,
	}

	// Derived metrics are atomic: all set or all absent.
	if fields := derived.Calculate(resolution.Value, weightGrams); fields != nil {
		product.CO2TotalGrams = &fields.CO2TotalGrams
		transport := fields.Transport
		product.Transport = &transport
		product.ImpactLevel = fields.ImpactLevel
	}

	return product, nil, sample
}

// normalizeWeight converts whatever weight information the record carries to
// grams within the configured plausibility range.
func (p *Pipeline) normalizeWeight(raw *models.RawProduct) (*float64, string, bool, []string) {
	var issues []string

	if raw.Weight != nil && raw.WeightUnit != "" {
		original := formatWeight(*raw.Weight, raw.WeightUnit)
		if u, ok := units.Normalize(strings.ToLower(strings.TrimSpace(raw.WeightUnit))); ok {
			grams := units.ToGrams(*raw.Weight, u)
			grams, rangeIssues := p.checkWeightRange(grams)
			return grams, original, true, append(issues, rangeIssues...)
		}
		issues = append(issues, "unknown weight unit: "+raw.WeightUnit)
	}

	if raw.Quantity != "" {
		parsed := quantity.Parse(raw.Quantity)
		if parsed.Value == nil {
			return nil, raw.Quantity, false, issues
		}
		grams, rangeIssues := p.checkWeightRange(parsed.Grams())
		return grams, raw.Quantity, true, append(issues, rangeIssues...)
	}

	return nil, "", false, issues
}

func (p *Pipeline) checkWeightRange(grams *float64) (*float64, []string) {
	if grams == nil {
		return nil, nil
	}
	if *grams < p.weightRange.Min || *grams > p.weightRange.Max {
		return nil, []string{"weight out of plausible range"}
	}
	return grams, nil
}

func (p *Pipeline) skipDuplicate(ctx context.Context, raw *models.RawProduct) bool {
	if p.dedup == nil {
		return false
	}
	skip, err := p.dedup.ShouldSkip(ctx, raw)
	if err != nil {
		// Cache trouble degrades to processing everything.
		p.logger.WithError(err).Warn("dedup check failed, processing product", map[string]interface{}{
			"barcode": raw.Barcode,
		})
		return false
	}
	return skip
}

func (p *Pipeline) markStatus(ctx context.Context, raw *models.RawProduct, status models.ProductStatus) {
	if p.dedup == nil {
		return
	}
	if err := p.dedup.MarkStatus(ctx, raw, status); err != nil {
		p.logger.WithError(err).Warn("dedup status update failed", map[string]interface{}{
			"barcode": raw.Barcode,
			"status":  string(status),
		})
	}
}

func presentAndValid(ok bool) quality.FieldObservation {
	return quality.FieldObservation{Present: ok, Valid: ok}
}

func countRejection(b *models.RejectionBreakdown, category string) {
	switch category {
	case "missing_barcode":
		b.MissingBarcode++
	case "missing_product_name":
		b.MissingProductName++
	case "missing_brand_name":
		b.MissingBrandName++
	case "missing_weight":
		b.MissingWeight++
	case "missing_co2":
		b.MissingCO2++
	case "missing_nutriscore":
		b.MissingNutriScore++
	default:
		b.InvalidData++
	}
}

func formatWeight(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + unit
}
