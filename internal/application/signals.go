package application

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"wildfire-monitoring-system/internal/domain"
)

const syntheticGridSize = 10

// SyntheticSignalProvider generates mock surface-temperature and NDVI
// grids. Each area draws from its own generator seeded from the provider
// seed and the area key, so a given seed replays the same sequence.
type SyntheticSignalProvider struct {
	seed uint64

	mu   sync.Mutex
	rngs map[string]*rand.Rand
}

// NewSyntheticSignalProvider creates a provider for the given seed
func NewSyntheticSignalProvider(seed uint64) *SyntheticSignalProvider {
	return &SyntheticSignalProvider{
		seed: seed,
		rngs: make(map[string]*rand.Rand),
	}
}

// Signals returns a 10x10 temperature grid (20..45°C) and NDVI grid (0.2..0.8)
func (p *SyntheticSignalProvider) Signals(area domain.MonitoredArea) domain.SignalGrids {
	p.mu.Lock()
	defer p.mu.Unlock()

	rng, ok := p.rngs[area.Key]
	if !ok {
		h := fnv.New64a()
		h.Write([]byte(area.Key))
		rng = rand.New(rand.NewPCG(p.seed, h.Sum64()))
		p.rngs[area.Key] = rng
	}

	return domain.SignalGrids{
		SurfaceTemp: grid(rng, 20, 45),
		NDVI:        grid(rng, 0.2, 0.8),
	}
}

func grid(rng *rand.Rand, lo, hi float64) [][]float64 {
	out := make([][]float64, syntheticGridSize)
	for i := range out {
		row := make([]float64, syntheticGridSize)
		for j := range row {
			row[j] = lo + rng.Float64()*(hi-lo)
		}
		out[i] = row
	}
	return out
}

// StaticSignalProvider serves fixed grids per area key, for scenario
// replay. Unknown keys get empty grids.
type StaticSignalProvider struct {
	mu    sync.RWMutex
	grids map[string]domain.SignalGrids
}

// NewStaticSignalProvider creates an empty StaticSignalProvider
func NewStaticSignalProvider() *StaticSignalProvider {
	return &StaticSignalProvider{grids: make(map[string]domain.SignalGrids)}
}

// Set replaces the grids returned for an area key
func (p *StaticSignalProvider) Set(areaKey string, grids domain.SignalGrids) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grids[normalizeKey(areaKey)] = grids
}

// Signals returns the configured grids for the area
func (p *StaticSignalProvider) Signals(area domain.MonitoredArea) domain.SignalGrids {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.grids[area.Key]
}
