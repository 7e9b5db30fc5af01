package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"wildfire-monitoring-system/internal/domain"
)

// Config represents the service configuration
type Config struct {
	Environment string                `mapstructure:"environment"`
	Server      ServerConfig          `mapstructure:"server"`
	Monitoring  MonitoringConfig      `mapstructure:"monitoring"`
	Risk        RiskConfig            `mapstructure:"risk"`
	Areas       map[string]AreaConfig `mapstructure:"areas"`
	Nests       map[string]NestConfig `mapstructure:"nests"`
	Signals     SignalsConfig         `mapstructure:"signals"`
	Database    DatabaseConfig        `mapstructure:"database"`
	MinIO       MinIOConfig           `mapstructure:"minio"`
	Logging     LoggingConfig         `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	APIKey          string        `mapstructure:"api_key"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MonitoringConfig contains scan cycle settings
type MonitoringConfig struct {
	ScanInterval     time.Duration `mapstructure:"scan_interval"`
	HistoryRetention time.Duration `mapstructure:"history_retention"`
	HistoryWindow    int           `mapstructure:"history_window"`
	AutoDispatch     bool          `mapstructure:"auto_dispatch"`
	SinkTimeout      time.Duration `mapstructure:"sink_timeout"`
}

// RiskConfig contains the global alert cut-points
type RiskConfig struct {
	Medium   float64 `mapstructure:"medium"`
	High     float64 `mapstructure:"high"`
	Critical float64 `mapstructure:"critical"`
}

// AreaConfig describes one monitored area, keyed by area key
type AreaConfig struct {
	Name          string  `mapstructure:"name"`
	Lat           float64 `mapstructure:"lat"`
	Lon           float64 `mapstructure:"lon"`
	RadiusKm      float64 `mapstructure:"radius_km"`
	RiskThreshold float64 `mapstructure:"risk_threshold"`
}

// NestConfig locates one drone nest, keyed by nest id
type NestConfig struct {
	Lat float64 `mapstructure:"lat"`
	Lon float64 `mapstructure:"lon"`
}

// SignalsConfig seeds the synthetic signal generator
type SignalsConfig struct {
	Seed uint64 `mapstructure:"seed"`
}

// DatabaseConfig contains the archive database settings. An empty URL
// disables the archive.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MinIOConfig contains snapshot storage settings. An empty endpoint
// disables snapshot export.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// RegisterFlags defines the command-line flags understood by Load
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("addr", ":8080", "HTTP server address")
	fs.String("db", "", "Archive database URL, empty disables the archive")
	fs.String("minio-endpoint", "", "MinIO endpoint, empty disables snapshot export")
	fs.String("log-level", "info", "Log level")
	fs.Duration("scan-interval", 30*time.Second, "Risk scan interval")
}

var flagKeys = map[string]string{
	"addr":           "server.addr",
	"db":             "database.url",
	"minio-endpoint": "minio.endpoint",
	"log-level":      "logging.level",
	"scan-interval":  "monitoring.scan_interval",
}

// Load reads configuration from defaults, an optional YAML file, WILDFIRE_*
// environment variables and flags, in increasing order of precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WILDFIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := ""
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
		configPath, _ = fs.GetString("config")
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/wildfire-monitoring")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(cfg.Areas) == 0 {
		cfg.Areas = defaultAreas()
	}
	if len(cfg.Nests) == 0 {
		cfg.Nests = defaultNests()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// General
	v.SetDefault("environment", "development")

	// Server
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Monitoring
	v.SetDefault("monitoring.scan_interval", "30s")
	v.SetDefault("monitoring.history_retention", "168h")
	v.SetDefault("monitoring.history_window", 5)
	v.SetDefault("monitoring.auto_dispatch", true)
	v.SetDefault("monitoring.sink_timeout", "10s")

	// Risk cut-points
	v.SetDefault("risk.medium", 0.6)
	v.SetDefault("risk.high", 0.8)
	v.SetDefault("risk.critical", 0.9)

	// Signals
	v.SetDefault("signals.seed", 1)

	// Database
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// MinIO
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "wildfire-snapshots")
	v.SetDefault("minio.use_ssl", false)

	// Logging
	v.SetDefault("logging.level", "info")
}

func defaultAreas() map[string]AreaConfig {
	return map[string]AreaConfig{
		"fundao":       {Name: "Fundão", Lat: 40.1397, Lon: -7.5006, RadiusKm: 5, RiskThreshold: 0.7},
		"castelo_novo": {Name: "Castelo Novo", Lat: 40.0789, Lon: -7.4947, RadiusKm: 5, RiskThreshold: 0.7},
	}
}

func defaultNests() map[string]NestConfig {
	return map[string]NestConfig{
		"fundao_nest":       {Lat: 40.1397, Lon: -7.5006},
		"castelo_novo_nest": {Lat: 40.0789, Lon: -7.4947},
	}
}

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if c.Monitoring.ScanInterval <= 0 {
		return fmt.Errorf("monitoring.scan_interval must be positive, got %s", c.Monitoring.ScanInterval)
	}
	if c.Monitoring.HistoryRetention <= 0 {
		return fmt.Errorf("monitoring.history_retention must be positive, got %s", c.Monitoring.HistoryRetention)
	}
	if c.Monitoring.HistoryWindow <= 0 {
		return fmt.Errorf("monitoring.history_window must be positive, got %d", c.Monitoring.HistoryWindow)
	}
	if len(c.Areas) == 0 {
		return errors.New("at least one area must be configured")
	}
	for key, area := range c.Areas {
		if area.RiskThreshold <= 0 || area.RiskThreshold >= 1 {
			return fmt.Errorf("area %q: risk_threshold must be in (0,1), got %v", key, area.RiskThreshold)
		}
	}
	if len(c.Nests) == 0 {
		return errors.New("at least one nest must be configured")
	}
	if c.MinIO.Endpoint != "" && c.MinIO.Bucket == "" {
		return errors.New("minio.bucket is required when minio.endpoint is set")
	}
	return nil
}

// Thresholds returns the global alert cut-points
func (c *Config) Thresholds() domain.RiskThresholds {
	return domain.RiskThresholds{
		Medium:   c.Risk.Medium,
		High:     c.Risk.High,
		Critical: c.Risk.Critical,
	}
}

// MonitoredAreas converts the areas map into domain areas sorted by key
func (c *Config) MonitoredAreas() []domain.MonitoredArea {
	keys := make([]string, 0, len(c.Areas))
	for key := range c.Areas {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]domain.MonitoredArea, 0, len(keys))
	for _, key := range keys {
		a := c.Areas[key]
		out = append(out, domain.MonitoredArea{
			Key:           key,
			Name:          a.Name,
			Center:        domain.Coordinates{Lat: a.Lat, Lon: a.Lon},
			RadiusKm:      a.RadiusKm,
			RiskThreshold: a.RiskThreshold,
		})
	}
	return out
}

// DroneNests converts the nests map into domain nests sorted by id
func (c *Config) DroneNests() []domain.Nest {
	ids := make([]string, 0, len(c.Nests))
	for id := range c.Nests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.Nest, 0, len(ids))
	for _, id := range ids {
		n := c.Nests[id]
		out = append(out, domain.Nest{ID: id, Coords: domain.Coordinates{Lat: n.Lat, Lon: n.Lon}})
	}
	return out
}
