// internal/transform/derived/derived_test.go
package derived

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

// ==========================
// Calculation Tests
// ==========================

func TestCalculate(t *testing.T) {
	// 500 g CO2 per 100g over a 200 g product: 1000 g total.
	got := Calculate(f(500), f(200))
	require.NotNil(t, got)

	assert.Equal(t, 1000.0, got.CO2TotalGrams)
	assert.Equal(t, 8.333, got.Transport.CarKm)
	assert.Equal(t, 71.429, got.Transport.TrainKm)
	assert.Equal(t, 14.706, got.Transport.BusKm)
	assert.Equal(t, 3.922, got.Transport.PlaneKm)
	assert.Equal(t, ImpactMedium, got.ImpactLevel)
}

func TestCalculate_ZeroFootprint(t *testing.T) {
	got := Calculate(f(0), f(350))
	require.NotNil(t, got)

	assert.Equal(t, 0.0, got.CO2TotalGrams)
	assert.Equal(t, 0.0, got.Transport.CarKm)
	assert.Equal(t, ImpactLow, got.ImpactLevel)
}

// ==========================
// Atomicity Tests
// ==========================

func TestCalculate_Atomic(t *testing.T) {
	tests := []struct {
		name   string
		co2    *float64
		weight *float64
	}{
		{name: "missing weight", co2: f(500), weight: nil},
		{name: "missing footprint", co2: nil, weight: f(200)},
		{name: "missing both", co2: nil, weight: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Calculate(tt.co2, tt.weight))
		})
	}
}

// ==========================
// Impact Band Tests
// ==========================

func TestImpactLevel_Bands(t *testing.T) {
	tests := []struct {
		name     string
		co2      float64
		weight   float64
		expected string
	}{
		{name: "low band", co2: 100, weight: 100, expected: ImpactLow},
		{name: "low band upper edge", co2: 500, weight: 100, expected: ImpactLow},
		{name: "medium band", co2: 501, weight: 100, expected: ImpactMedium},
		{name: "medium band upper edge", co2: 1500, weight: 100, expected: ImpactMedium},
		{name: "high band", co2: 1501, weight: 100, expected: ImpactHigh},
		{name: "high band upper edge", co2: 3000, weight: 100, expected: ImpactHigh},
		{name: "very high band", co2: 3001, weight: 100, expected: ImpactVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(f(tt.co2), f(tt.weight))
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got.ImpactLevel)
		})
	}
}
