package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"CMDQ_LOG_LEVEL", "CMDQ_FORMAT", "CMDQ_DB", "CMDQ_PROCESSOR_NAME",
		"CMDQ_OTEL_ENDPOINT", "CMDQ_OTEL_ENABLED", "CMDQ_SERVICE_NAME",
	} {
		// Setenv registers restoration; Unsetenv then clears it for this test.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, "Cmd", cfg.ProcessorName)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, "cmdq", cfg.ServiceName)
	assert.False(t, cfg.TracingEnabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CMDQ_LOG_LEVEL", "debug")
	t.Setenv("CMDQ_FORMAT", "json")
	t.Setenv("CMDQ_DB", "/tmp/journal.db")
	t.Setenv("CMDQ_PROCESSOR_NAME", "jobs")
	t.Setenv("CMDQ_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("CMDQ_OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "/tmp/journal.db", cfg.Database)
	assert.Equal(t, "jobs", cfg.ProcessorName)
	assert.True(t, cfg.TracingEnabled())
}

func TestLoad_TracingDisabledExplicitly(t *testing.T) {
	t.Setenv("CMDQ_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("CMDQ_OTEL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.TracingEnabled())
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("CMDQ_OTEL_ENABLED", "maybe")

	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestLoad_InvalidLevel(t *testing.T) {
	t.Setenv("CMDQ_LOG_LEVEL", "loud")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid log level")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
