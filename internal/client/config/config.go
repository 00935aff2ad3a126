package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the taskdesk CLI.
//
// Fields:
//   - APIBaseURL: origin (and optional path prefix) of the task backend.
//   - RequestTimeout: fixed per-request timeout for backend calls.
//   - StorePath: SQLite file holding the token slot; "" disables storage.
//   - LogLevel, LogFormat: logger settings (format "text" or "json").
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	StorePath      string
	LogLevel       string
	LogFormat      string
}

// DefaultStorePath is relative to the working directory.
var DefaultStorePath = filepath.Join(".taskdesk", "taskdesk.db")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.RequestTimeout = 10 * time.Second
	c.StorePath = DefaultStorePath
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// StorageEnabled reports whether the token should be persisted.
func (c *Config) StorageEnabled() bool {
	return c.StorePath != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
