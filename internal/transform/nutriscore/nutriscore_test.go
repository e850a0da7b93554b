// internal/transform/nutriscore/nutriscore_test.go
package nutriscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

// ==========================
// Grade Tests
// ==========================

func TestNormalizeGrade(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "lowercase grade", raw: "a", expected: "A"},
		{name: "uppercase grade", raw: "E", expected: "E"},
		{name: "padded grade", raw: "  c  ", expected: "C"},
		{name: "out of scale letter", raw: "f", expected: ""},
		{name: "unknown marker", raw: "unknown", expected: ""},
		{name: "not-applicable marker", raw: "not-applicable", expected: ""},
		{name: "empty", raw: "", expected: ""},
		{name: "numeric string", raw: "1", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeGrade(tt.raw))
		})
	}
}

func TestNormalizeEcoScore(t *testing.T) {
	// Eco-Score shares the A-E scale and the same normalization.
	assert.Equal(t, "B", NormalizeEcoScore("b"))
	assert.Equal(t, "", NormalizeEcoScore("a-plus"))
}

// ==========================
// Score Tests
// ==========================

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      *float64
		expected *float64
	}{
		{name: "nil passes through", raw: nil, expected: nil},
		{name: "zero is valid", raw: f(0), expected: f(0)},
		{name: "lower bound", raw: f(-15), expected: f(-15)},
		{name: "upper bound", raw: f(40), expected: f(40)},
		{name: "below range", raw: f(-16), expected: nil},
		{name: "above range", raw: f(41), expected: nil},
		{name: "fractional score rejected", raw: f(12.5), expected: nil},
		{name: "negative integer in range", raw: f(-3), expected: f(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeScore(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}
