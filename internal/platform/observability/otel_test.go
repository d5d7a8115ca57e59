package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	s := SettingsFromEnv()
	assert.Equal(t, "staging", s.Environment)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, ExporterNone, s.TraceExporter)
	assert.InDelta(t, 0.25, s.SampleRatio, 1e-9)
}

func TestSettingsFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "7")

	s := SettingsFromEnv()
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
	assert.Equal(t, float64(1), s.SampleRatio)
}

func TestInitWithSettings_LogsJSONWithServiceName(t *testing.T) {
	var buf bytes.Buffer
	instruments, shutdown, err := InitWithSettings(context.Background(), "marketplace-test", Settings{
		Environment:   "test",
		LogLevel:      slog.LevelInfo,
		LogFormat:     "json",
		TraceExporter: ExporterNone,
		SampleRatio:   1,
		Output:        &buf,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	instruments.Logger.Debug("hidden")
	instruments.Logger.Info("visible", slog.String("order_id", "o-1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "marketplace-test", entry["service"])
	assert.Equal(t, "o-1", entry["order_id"])
	assert.NotNil(t, instruments.Tracer("test"))
	assert.NotNil(t, instruments.Meter("test"))
}
