package gateway

import (
	"fmt"
	"time"

	"github.com/wagov/convertd/errors"
)

// Config holds configuration for the conversion gateway HTTP surface.
type Config struct {
	// ListenAddr is the bind address for the gateway server (e.g. ":8080")
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// EnableCORS enables CORS headers (default: false, requires explicit cors_origins)
	EnableCORS bool `json:"enable_cors" yaml:"enable_cors"`

	// CORSOrigins lists allowed CORS origins (required when EnableCORS is true)
	// Use ["*"] for development only - production should specify exact origins
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`

	// TimeoutStr bounds per-request conversion time (default: "10s")
	TimeoutStr string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// timeout is the parsed duration (internal use)
	timeout time.Duration
}

// Validate ensures the gateway configuration is valid and fills defaults.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}

	if c.TimeoutStr == "" {
		c.timeout = 10 * time.Second
	} else {
		parsed, err := time.ParseDuration(c.TimeoutStr)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid timeout format: %s", c.TimeoutStr))
		}
		c.timeout = parsed
	}

	if c.timeout < 100*time.Millisecond || c.timeout > 5*time.Minute {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"timeout must be between 100ms and 5m")
	}

	// CORS requires explicit origin configuration
	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"enable_cors requires explicit cors_origins configuration (use [\"*\"] for development only)")
	}

	return nil
}

// Timeout returns the parsed per-request timeout.
func (c *Config) Timeout() time.Duration {
	return c.timeout
}

// DefaultConfig returns default gateway configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:  ":8080",
		EnableCORS:  false,
		CORSOrigins: []string{},
		timeout:     10 * time.Second,
	}
}
