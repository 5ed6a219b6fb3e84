// Package config defines process configuration and the persisted
// settings document.
//
// Two layers live here on purpose. Config is process-level plumbing
// (logging, paths, metrics) resolved from defaults, an optional YAML
// file and environment variables. Settings is the user-editable JSON
// document that travels with the catalog directory and survives between
// runs (spreadsheet, date window, thresholds).
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseDir locates the catalog documents and the run history.
	BaseDir string `koanf:"base_dir"`

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// Timezone interprets log timestamps; empty means the system zone.
	Timezone string `koanf:"timezone"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		BaseDir:  ".",
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
