package app

import (
	"fmt"
	"time"

	"github.com/specialistvlad/gridslicer/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JobPath string     // optional .hcl or .yaml job file
	Flags   config.Job // values given on the command line, zero when unset

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WatchDebounce   time.Duration
}

// NewConfig validates the process-level settings. The job itself is
// validated once every source has been merged, in NewApp.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "", "auto", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'auto', 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
