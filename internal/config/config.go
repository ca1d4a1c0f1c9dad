// Package config handles configuration loading for fundlens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Data    DataConfig    `mapstructure:"data"    yaml:"data"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// DataConfig holds data-source and cache settings.
type DataConfig struct {
	VendorChartBaseURL  string `mapstructure:"vendor_chart_base_url"  yaml:"vendor_chart_base_url"`
	FundamentalsBaseURL string `mapstructure:"fundamentals_base_url"  yaml:"fundamentals_base_url"`
	ScraperBaseURL      string `mapstructure:"scraper_base_url"       yaml:"scraper_base_url"`
	SnapshotDir         string `mapstructure:"snapshot_dir"           yaml:"snapshot_dir"`
	SyntheticEnabled    bool   `mapstructure:"synthetic_enabled"      yaml:"synthetic_enabled"`
	CacheTTLSec         int    `mapstructure:"cache_ttl_sec"          yaml:"cache_ttl_sec"`
	CacheSweepThreshold int    `mapstructure:"cache_sweep_threshold"  yaml:"cache_sweep_threshold"`
	LiveTimeoutSec      int    `mapstructure:"live_timeout_sec"       yaml:"live_timeout_sec"`
}

// CacheTTL returns the response cache TTL as a duration.
func (d DataConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLSec) * time.Second
}

// LiveTimeout returns the per-attempt live source timeout as a duration.
func (d DataConfig) LiveTimeout() time.Duration {
	return time.Duration(d.LiveTimeoutSec) * time.Second
}

// NewsConfig holds RSS feed settings. An empty Feeds list keeps the
// built-in Indian market feeds.
type NewsConfig struct {
	Feeds []FeedConfig `mapstructure:"feeds" yaml:"feeds"`
}

// FeedConfig is one configured RSS feed.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fundlens/config.yaml (home directory)
//  3. /etc/fundlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: FUNDLENS_<SECTION>_<KEY>, e.g., FUNDLENS_API_PORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fundlens"))
	v.AddConfigPath("/etc/fundlens")

	v.SetEnvPrefix("FUNDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not required to exist; defaults + env vars suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FUNDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Data defaults
	v.SetDefault("data.vendor_chart_base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("data.fundamentals_base_url", "")
	v.SetDefault("data.scraper_base_url", "https://www.screener.in")
	v.SetDefault("data.snapshot_dir", "")
	v.SetDefault("data.synthetic_enabled", true)
	v.SetDefault("data.cache_ttl_sec", 300) // 5 minutes
	v.SetDefault("data.cache_sweep_threshold", 256)
	v.SetDefault("data.live_timeout_sec", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
