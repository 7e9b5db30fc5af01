package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildfire-monitoring-system/internal/domain"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Monitoring.ScanInterval)
	assert.Equal(t, 168*time.Hour, cfg.Monitoring.HistoryRetention)
	assert.Equal(t, 5, cfg.Monitoring.HistoryWindow)
	assert.True(t, cfg.Monitoring.AutoDispatch)
	assert.Equal(t, domain.DefaultRiskThresholds(), cfg.Thresholds())
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.MinIO.Endpoint)

	areas := cfg.MonitoredAreas()
	require.Len(t, areas, 2)
	assert.Equal(t, "castelo_novo", areas[0].Key)
	assert.Equal(t, "Fundão", areas[1].Name)
	assert.Equal(t, 0.7, areas[1].RiskThreshold)

	nests := cfg.DroneNests()
	require.Len(t, nests, 2)
	assert.Equal(t, "castelo_novo_nest", nests[0].ID)
	assert.Equal(t, domain.Coordinates{Lat: 40.1397, Lon: -7.5006}, nests[1].Coords)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  api_key: file-key
monitoring:
  scan_interval: 1m
  auto_dispatch: false
areas:
  serra_da_gardunha:
    name: Serra da Gardunha
    lat: 40.10
    lon: -7.52
    radius_km: 8
    risk_threshold: 0.65
nests:
  alpedrinha_nest:
    lat: 40.10
    lon: -7.47
`)
	t.Setenv("WILDFIRE_SERVER_API_KEY", "env-key")
	t.Setenv("WILDFIRE_RISK_HIGH", "0.75")

	cfg, err := Load(newFlags(t, "--config", path, "--addr", ":7070"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "flag beats file")
	assert.Equal(t, "env-key", cfg.Server.APIKey, "env beats file")
	assert.Equal(t, 0.75, cfg.Risk.High)
	assert.Equal(t, time.Minute, cfg.Monitoring.ScanInterval)
	assert.False(t, cfg.Monitoring.AutoDispatch)

	areas := cfg.MonitoredAreas()
	require.Len(t, areas, 1)
	assert.Equal(t, "serra_da_gardunha", areas[0].Key)
	assert.Equal(t, 8.0, areas[0].RadiusKm)

	nests := cfg.DroneNests()
	require.Len(t, nests, 1)
	assert.Equal(t, "alpedrinha_nest", nests[0].ID)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unordered thresholds", "risk:\n  medium: 0.85\n  high: 0.8\n  critical: 0.9\n"},
		{"critical above one", "risk:\n  critical: 1.2\n"},
		{"area threshold", "areas:\n  x:\n    lat: 40\n    lon: -7\n    risk_threshold: 1.5\n"},
		{"zero interval", "monitoring:\n  scan_interval: 0s\n"},
		{"minio without bucket", "minio:\n  endpoint: localhost:9000\n  bucket: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFlags(t, "--config", writeConfig(t, tt.yaml)))
			assert.Error(t, err)
		})
	}
}
