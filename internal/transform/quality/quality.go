// Package quality scores a transformed batch: per-field presence and
// validity, an overall weighted score, and launch-readiness verdicts.
package quality

import (
	"fmt"
	"sort"

	"food-scanner/internal/models"
	"food-scanner/internal/transform/units"
)

// CriticalFields must all be present for a product to count as complete.
// Nutriscore joins them for completeness but is tracked as its own field.
var CriticalFields = []string{"barcode", "product_name", "brand_name", "co2_total"}

// FieldObservation is one product's contribution to a field's stats.
type FieldObservation struct {
	Present bool
	Valid   bool
}

// Sample is the scorer's view of one processed product.
type Sample struct {
	Fields         map[string]FieldObservation
	QuantityParsed bool
	Validated      bool
}

// Weights splits the overall score between its four components. They should
// sum to 1.
type Weights struct {
	Completeness    float64
	CriticalQuality float64
	ParseRate       float64
	CO2Coverage     float64
}

// DefaultWeights gives each component an equal quarter.
var DefaultWeights = Weights{
	Completeness:    0.25,
	CriticalQuality: 0.25,
	ParseRate:       0.25,
	CO2Coverage:     0.25,
}

// Per-field quality mixes presence and validity, presence dominating.
const (
	presenceWeight = 0.6
	validityWeight = 0.4
)

// Readiness gates on absolute complete-product counts, not percentages: a
// tiny all-complete batch is not launchable. Success rates stay in percent.
const (
	launchCompleteProducts = 100
	launchSuccessRate      = 80.0
	viableCompleteProducts = 50
	viableSuccessRate      = 70.0
)

// Scorer computes batch quality reports.
type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	if weights == (Weights{}) {
		weights = DefaultWeights
	}
	return &Scorer{weights: weights}
}

// Score aggregates the samples into a full quality report. An empty batch
// yields a zero report with grade F.
func (s *Scorer) Score(samples []Sample) *models.QualityReport {
	report := &models.QualityReport{
		TotalProducts: len(samples),
		FieldScores:   map[string]models.FieldQuality{},
		Grade:         "F",
	}
	if len(samples) == 0 {
		return report
	}

	fieldNames := collectFieldNames(samples)
	for _, name := range fieldNames {
		report.FieldScores[name] = scoreField(name, samples)
	}

	parsed := 0
	for _, sample := range samples {
		if sample.Validated {
			report.ValidatedCount++
		}
		if sample.QuantityParsed {
			parsed++
		}
		if isComplete(sample) {
			report.CompleteProducts++
		}
	}
	report.RejectedCount = report.TotalProducts - report.ValidatedCount

	total := float64(report.TotalProducts)
	report.SuccessRate = units.Round3(float64(report.ValidatedCount) / total * 100)
	report.QuantityParseRate = units.Round3(float64(parsed) / total * 100)

	if co2, ok := report.FieldScores["co2_total"]; ok {
		report.CO2Coverage = co2.PresenceRate
	}

	completeness := float64(report.CompleteProducts) / total * 100
	report.OverallScore = units.Round3(
		s.weights.Completeness*completeness +
			s.weights.CriticalQuality*avgCriticalQuality(report.FieldScores) +
			s.weights.ParseRate*report.QuantityParseRate +
			s.weights.CO2Coverage*report.CO2Coverage)

	report.Grade = gradeFor(report.OverallScore)
	report.BotLaunchReady = report.CompleteProducts >= launchCompleteProducts && report.SuccessRate >= launchSuccessRate
	report.MinimumViableDataset = report.CompleteProducts >= viableCompleteProducts && report.SuccessRate >= viableSuccessRate
	report.NextSteps = nextSteps(report)

	return report
}

func collectFieldNames(samples []Sample) []string {
	seen := map[string]struct{}{}
	for _, sample := range samples {
		for name := range sample.Fields {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func scoreField(name string, samples []Sample) models.FieldQuality {
	fq := models.FieldQuality{Field: name, Total: len(samples)}
	for _, sample := range samples {
		obs := sample.Fields[name]
		if obs.Present {
			fq.Present++
		}
		if obs.Valid {
			fq.Valid++
		}
	}
	total := float64(fq.Total)
	fq.PresenceRate = units.Round3(float64(fq.Present) / total * 100)
	fq.ValidityRate = units.Round3(float64(fq.Valid) / total * 100)
	fq.QualityScore = units.Round3(presenceWeight*fq.PresenceRate + validityWeight*fq.ValidityRate)
	return fq
}

func isComplete(sample Sample) bool {
	for _, field := range CriticalFields {
		if !sample.Fields[field].Present {
			return false
		}
	}
	return sample.Fields["nutriscore"].Present
}

func avgCriticalQuality(scores map[string]models.FieldQuality) float64 {
	sum := 0.0
	for _, field := range CriticalFields {
		sum += scores[field].QualityScore
	}
	return sum / float64(len(CriticalFields))
}

func gradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func nextSteps(r *models.QualityReport) []string {
	if r.BotLaunchReady {
		return []string{"Dataset ready for bot launch"}
	}

	var steps []string
	if r.CompleteProducts < launchCompleteProducts {
		steps = append(steps, fmt.Sprintf(
			"Fill missing critical fields: %d of %d products are complete (need %d)",
			r.CompleteProducts, r.TotalProducts, launchCompleteProducts))
	}
	if r.SuccessRate < launchSuccessRate {
		steps = append(steps, fmt.Sprintf(
			"Improve validation success rate: %.1f%% (target %.0f%%)",
			r.SuccessRate, launchSuccessRate))
	}
	if r.CO2Coverage < 100 {
		steps = append(steps, fmt.Sprintf(
			"Increase CO2 data coverage: %.1f%% of products carry a footprint",
			r.CO2Coverage))
	}
	if r.QuantityParseRate < launchSuccessRate {
		steps = append(steps, fmt.Sprintf(
			"Review quantity formats: only %.1f%% parsed", r.QuantityParseRate))
	}
	if !r.MinimumViableDataset {
		steps = append(steps, "Collect more products before launch: dataset below minimum viable size")
	}
	return steps
}
