package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildfire-monitoring-system/internal/domain"
)

func TestNewAreaRegistry(t *testing.T) {
	valid := domain.MonitoredArea{Key: "fundao", Center: fundaoCenter, RadiusKm: 5, RiskThreshold: 0.7}

	tests := []struct {
		name    string
		areas   []domain.MonitoredArea
		wantErr string
	}{
		{name: "empty", areas: nil, wantErr: "at least one"},
		{name: "blank key", areas: []domain.MonitoredArea{{Key: "  ", Center: fundaoCenter, RiskThreshold: 0.5}}, wantErr: "empty key"},
		{name: "duplicate key", areas: []domain.MonitoredArea{valid, {Key: "FUNDAO", Center: fundaoCenter, RiskThreshold: 0.5}}, wantErr: "duplicate"},
		{name: "threshold zero", areas: []domain.MonitoredArea{{Key: "a", Center: fundaoCenter, RiskThreshold: 0}}, wantErr: "risk threshold"},
		{name: "threshold one", areas: []domain.MonitoredArea{{Key: "a", Center: fundaoCenter, RiskThreshold: 1}}, wantErr: "risk threshold"},
		{name: "bad latitude", areas: []domain.MonitoredArea{{Key: "a", Center: domain.Coordinates{Lat: 91}, RiskThreshold: 0.5}}, wantErr: "invalid coordinates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAreaRegistry(tt.areas)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAreaRegistry_Lookup(t *testing.T) {
	registry, err := NewAreaRegistry([]domain.MonitoredArea{
		{Key: "Fundao", Name: "Fundão", Center: fundaoCenter, RadiusKm: 5, RiskThreshold: 0.7},
		{Key: "castelo_novo", Center: casteloNovoCenter, RadiusKm: 5, RiskThreshold: 0.7},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"castelo_novo", "fundao"}, registry.Keys())

	area, err := registry.Area(" FUNDAO ")
	require.NoError(t, err)
	assert.Equal(t, "fundao", area.Key)
	assert.Equal(t, "Fundão", area.Name)

	unnamed, err := registry.Area("castelo_novo")
	require.NoError(t, err)
	assert.Equal(t, "castelo_novo", unnamed.Name)

	_, err = registry.Area("lisboa")
	assert.ErrorIs(t, err, domain.ErrAreaNotFound)

	areas := registry.Areas()
	require.Len(t, areas, 2)
	assert.Equal(t, "castelo_novo", areas[0].Key)
}
