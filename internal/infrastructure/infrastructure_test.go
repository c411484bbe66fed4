package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airmarket/internal/config"
)

func TestNewLogger_InjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "refresh complete", slog.Int("records", 42))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "refresh complete", entry["msg"])
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.EqualValues(t, 42, entry["records"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitializeLogger_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "app.log")
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		CloseLogFile()
	})

	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logPath})
	require.NoError(t, err)

	logger.Info("written to file")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace id is kept")
}

func TestInitializeOTel_MetricsEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default().Telemetry
	cfg.EnableTracing = false
	cfg.EnableMetrics = true

	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordProviderFetch(context.Background(), "synthetic", "success")
	metrics.RecordExport(context.Background(), "csv", 15*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "provider_fetches_total")
	assert.Contains(t, body, `provider="synthetic"`)
	assert.Contains(t, body, "exports_total")
}

func TestNoopPipelineMetrics(t *testing.T) {
	m := NoopPipelineMetrics()
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.RecordProviderFetch(context.Background(), "opensky", "failure")
		m.RecordExport(context.Background(), "pdf", time.Second, assert.AnError)
	})

	var nilMetrics *PipelineMetrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordProviderFetch(context.Background(), "opensky", "failure")
	})
}
