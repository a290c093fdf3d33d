// Package config holds the application configuration, loaded from viper.
package config

import (
	"net/http"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Store   StoreConfig       `mapstructure:"store"`
	SerpAPI SerpAPIConfig     `mapstructure:"serpapi"`
	Locale  map[string]string `mapstructure:"locale"`
	Pacing  PacingConfig      `mapstructure:"pacing"`
	Expand  ExpandConfig      `mapstructure:"expand"`
	Output  OutputConfig      `mapstructure:"output"`
	Logging LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains run-history database configuration.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// SerpAPIConfig contains credentials and transport settings for the
// suggestion endpoint. APIKey falls back to the SERPAPI_KEY environment
// variable; its absence warns on startup but fails a batch run pre-flight.
type SerpAPIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HTTPClient builds the request client honoring the configured timeout.
func (c SerpAPIConfig) HTTPClient() *http.Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// PacingConfig contains request pacing and retry defaults.
type PacingConfig struct {
	RPM        int           `mapstructure:"rpm"`
	MaxRetries int           `mapstructure:"max_retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
}

// ExpandConfig contains default expansion toggles for new runs.
type ExpandConfig struct {
	Letters       bool     `mapstructure:"letters"`
	Prefixes      []string `mapstructure:"prefixes"`
	Suffixes      []string `mapstructure:"suffixes"`
	PresetFile    string   `mapstructure:"preset_file"`
	KeepSeedFirst bool     `mapstructure:"keep_seed_first"`
	Dedupe        bool     `mapstructure:"dedupe"`
}

// OutputConfig contains result rendering defaults.
type OutputConfig struct {
	Format    string `mapstructure:"format"`
	Delimiter string `mapstructure:"delimiter"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level: debug, info, warn, error.
	Level string `mapstructure:"level"`
}
