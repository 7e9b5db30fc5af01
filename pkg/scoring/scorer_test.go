package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_TemperatureRisk(t *testing.T) {
	s := NewScorer()

	t.Run("max 48 avg 40", func(t *testing.T) {
		// 40 is the mean of {48, 32}
		got := s.TemperatureRisk([][]float64{{48, 32}})
		want := 0.7*(33.0/35.0) + 0.3*(25.0/35.0)
		assert.InDelta(t, want, got, 1e-9)
	})

	t.Run("below band is zero", func(t *testing.T) {
		assert.Zero(t, s.TemperatureRisk([][]float64{{-10, 5}}))
	})

	t.Run("above band is one", func(t *testing.T) {
		assert.Equal(t, 1.0, s.TemperatureRisk([][]float64{{90, 75}}))
	})

	t.Run("non-finite cells ignored", func(t *testing.T) {
		got := s.TemperatureRisk([][]float64{{math.NaN(), 50, math.Inf(1)}})
		assert.Equal(t, 1.0, got)
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Zero(t, s.TemperatureRisk(nil))
	})
}

func TestScorer_VegetationRisk(t *testing.T) {
	s := NewScorer()

	assert.InDelta(t, 0.9, s.VegetationRisk([][]float64{{0.1, 0.1}, {0.1}}), 1e-9)
	assert.Equal(t, 1.0, s.VegetationRisk([][]float64{{-0.4}}))
	assert.Zero(t, s.VegetationRisk([][]float64{{1.3}}))
	assert.Zero(t, s.VegetationRisk([][]float64{{math.NaN()}}))
}

func TestScorer_HistoricalRisk(t *testing.T) {
	s := NewScorer()

	assert.Zero(t, s.HistoricalRisk(nil, 5))
	assert.InDelta(t, 0.5, s.HistoricalRisk([]float64{0.4, 0.6}, 5), 1e-9)
	// only the last five count
	assert.InDelta(t, 0.2, s.HistoricalRisk([]float64{1, 1, 0.2, 0.2, 0.2, 0.2, 0.2}, 5), 1e-9)
	assert.Zero(t, s.HistoricalRisk([]float64{0.9}, 0))
}

func TestTotal(t *testing.T) {
	assert.InDelta(t, 0.5, Total([]float64{0.5, 0.5, 0.5}, []float64{0.4, 0.3, 0.3}), 1e-9)
	assert.Equal(t, 1.0, Total([]float64{1, 1, 1}, []float64{0.5, 0.5, 0.5}))
	assert.Zero(t, Total([]float64{-1}, []float64{1}))
	assert.Zero(t, Total([]float64{math.NaN()}, []float64{1}))
}

func TestNormalize(t *testing.T) {
	assert.InDelta(t, 0.5, Normalize(32.5, 15, 50), 1e-9)
	assert.Zero(t, Normalize(10, 15, 50))
	assert.Equal(t, 1.0, Normalize(60, 15, 50))
	assert.Zero(t, Normalize(10, 5, 5))
}
