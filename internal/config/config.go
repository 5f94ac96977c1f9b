// Package config loads cmdq settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds settings shared by every cmdq command. Command-line flags
// override these values.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"CMDQ_LOG_LEVEL" envDefault:"info"`

	// Format is the CLI output format, text or json.
	Format string `env:"CMDQ_FORMAT" envDefault:"text"`

	// Database is the journal path. Empty disables journaling.
	Database string `env:"CMDQ_DB"`

	// ProcessorName overrides the default processor name for scenarios
	// that do not set one.
	ProcessorName string `env:"CMDQ_PROCESSOR_NAME" envDefault:"Cmd"`

	// OTelEndpoint is the OTLP/HTTP traces endpoint. Empty disables export.
	OTelEndpoint string `env:"CMDQ_OTEL_ENDPOINT"`

	// OTelEnabled turns export off even when an endpoint is set.
	OTelEnabled bool `env:"CMDQ_OTEL_ENABLED" envDefault:"true"`

	// ServiceName is reported as the OpenTelemetry service.name.
	ServiceName string `env:"CMDQ_SERVICE_NAME" envDefault:"cmdq"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

// TracingEnabled reports whether spans should be exported.
func (c Config) TracingEnabled() bool {
	return c.OTelEnabled && c.OTelEndpoint != ""
}
