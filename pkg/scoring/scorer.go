package scoring

import (
	"math"
)

// Weights of the three risk factors
const (
	TemperatureWeight = 0.4
	VegetationWeight  = 0.3
	HistoricalWeight  = 0.3
)

// Scorer turns raw signal grids into normalized factor values
type Scorer struct {
	// Surface temperature band mapped onto [0,1]
	minTempC float64
	maxTempC float64

	// Share of the maximum temperature in the combined temperature value
	maxTempShare float64
}

// NewScorer creates a Scorer with the 15..50°C band
func NewScorer() *Scorer {
	return &Scorer{
		minTempC:     15,
		maxTempC:     50,
		maxTempShare: 0.7,
	}
}

// TemperatureRisk combines normalized max and mean surface temperature.
// A grid without finite cells scores 0.
func (s *Scorer) TemperatureRisk(grid [][]float64) float64 {
	values := Finite(grid)
	if len(values) == 0 {
		return 0
	}

	maxNorm := Normalize(Max(values), s.minTempC, s.maxTempC)
	avgNorm := Normalize(Mean(values), s.minTempC, s.maxTempC)

	return Clamp01(s.maxTempShare*maxNorm + (1-s.maxTempShare)*avgNorm)
}

// VegetationRisk is 1 - mean NDVI. A grid without finite cells scores 0.
func (s *Scorer) VegetationRisk(grid [][]float64) float64 {
	values := Finite(grid)
	if len(values) == 0 {
		return 0
	}
	return Clamp01(1 - Mean(values))
}

// HistoricalRisk is the mean of at most the last window values, 0 when empty.
func (s *Scorer) HistoricalRisk(totals []float64, window int) float64 {
	if window <= 0 || len(totals) == 0 {
		return 0
	}
	if len(totals) > window {
		totals = totals[len(totals)-window:]
	}
	return Clamp01(Mean(totals))
}

// Total returns min(Σ value*weight, 1), never below 0.
func Total(values, weights []float64) float64 {
	sum := 0.0
	for i := range values {
		if i >= len(weights) {
			break
		}
		sum += values[i] * weights[i]
	}
	return Clamp01(sum)
}

// Helpers

// Normalize maps v from [lo,hi] onto [0,1], clamped.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clamp01((v - lo) / (hi - lo))
}

// Clamp01 bounds v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Finite flattens a grid, dropping NaN and ±Inf cells.
func Finite(grid [][]float64) []float64 {
	var out []float64
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Max returns the largest value, 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
