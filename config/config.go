package config

import (
	"fmt"
	"log/slog"

	"github.com/wagov/convertd/errors"
	"github.com/wagov/convertd/gateway"
)

// Config represents the complete application configuration
type Config struct {
	// Version is the configuration schema version (semver, e.g. "1.0.0")
	Version string `json:"version" yaml:"version"`

	// Logging controls the structured log output
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`

	// Gateway configures the conversion HTTP server
	Gateway gateway.Config `json:"gateway" yaml:"gateway"`

	// Metrics configures the Prometheus metrics server
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// LoggingConfig controls structured logging output
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error" (default: "info")
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "json" or "text" (default: "json")
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig configures the Prometheus metrics endpoint
type MetricsConfig struct {
	// Enabled turns the metrics server on (default: true)
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Port is the metrics server listen port (default: 9090)
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Path is the metrics endpoint path (default: "/metrics")
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// MetricsEnabled reports whether the metrics server should run
func (m MetricsConfig) MetricsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// Validate checks the full configuration and fills defaults
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = "1.0.0"
	}

	if err := c.Logging.validate(); err != nil {
		return err
	}

	if err := c.Gateway.Validate(); err != nil {
		return err
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = 9090
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("metrics port out of range: %d", c.Metrics.Port))
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	return nil
}

func (l *LoggingConfig) validate() error {
	if l.Level == "" {
		l.Level = "info"
	}
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log level: %s", l.Level))
	}

	if l.Format == "" {
		l.Format = "json"
	}
	switch l.Format {
	case "json", "text":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log format: %s", l.Format))
	}

	return nil
}

// SlogLevel maps the configured level to a slog.Level
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultConfig returns a validated default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Version: "1.0.0",
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Gateway: gateway.DefaultConfig(),
		Metrics: MetricsConfig{Port: 9090, Path: "/metrics"},
	}
	// Defaults are constructed valid; Validate fills derived fields
	_ = cfg.Validate()
	return cfg
}
