// Package nutriscore normalizes Nutri-Score grades and scores and Eco-Score
// grades to their canonical forms.
package nutriscore

import (
	"math"
	"strings"
)

// Score bounds as defined by the Nutri-Score scheme.
const (
	MinScore = -15
	MaxScore = 40
)

// NormalizeGrade uppercases and validates a letter grade. Anything outside
// A-E comes back empty.
func NormalizeGrade(raw string) string {
	g := strings.ToUpper(strings.TrimSpace(raw))
	switch g {
	case "A", "B", "C", "D", "E":
		return g
	}
	return ""
}

// NormalizeScore validates a numeric Nutri-Score. Non-integer or out-of-range
// values come back nil.
func NormalizeScore(raw *float64) *float64 {
	if raw == nil {
		return nil
	}
	v := *raw
	if v != math.Trunc(v) {
		return nil
	}
	if v < MinScore || v > MaxScore {
		return nil
	}
	score := v
	return &score
}

// NormalizeEcoScore validates an Eco-Score letter grade, which shares the
// A-E scale.
func NormalizeEcoScore(raw string) string {
	return NormalizeGrade(raw)
}
