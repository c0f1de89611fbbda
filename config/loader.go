package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wagov/convertd/errors"
)

// Environment variable names recognized by ApplyEnv. Environment values
// override whatever the config file set.
const (
	EnvListenAddr  = "CONVERTD_LISTEN_ADDR"
	EnvTimeout     = "CONVERTD_TIMEOUT"
	EnvLogLevel    = "CONVERTD_LOG_LEVEL"
	EnvLogFormat   = "CONVERTD_LOG_FORMAT"
	EnvMetricsPort = "CONVERTD_METRICS_PORT"
	EnvEnableCORS  = "CONVERTD_ENABLE_CORS"
	EnvCORSOrigins = "CONVERTD_CORS_ORIGINS"
)

// Load reads configuration from the given file, applies environment
// overrides, and validates the result. An empty path yields defaults
// plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFatal(err, "Loader", "Load",
				"read config file")
		}
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, err
		}
	}

	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// unmarshal decodes config data as YAML or JSON based on the file extension
func unmarshal(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.WrapFatal(err, "Loader", "Load",
				"parse YAML config")
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return errors.WrapFatal(err, "Loader", "Load",
				"parse JSON config")
		}
	default:
		return errors.WrapFatal(errors.ErrInvalidConfig, "Loader", "Load",
			fmt.Sprintf("unsupported config extension %q (want .yaml, .yml or .json)", ext))
	}
	return nil
}

// ApplyEnv overlays CONVERTD_* environment variables onto the config.
// Malformed values are ignored so a stray variable cannot take the
// service down; Validate catches anything that matters.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Gateway.ListenAddr = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		cfg.Gateway.TimeoutStr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvMetricsPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv(EnvEnableCORS); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Gateway.EnableCORS = enabled
		}
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.Gateway.CORSOrigins = origins
	}
}
