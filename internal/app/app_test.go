package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airmarket/internal/config"
	"airmarket/pkg/contracts/domain"
)

// testConfig returns a synthetic-only configuration rooted in a temp dir
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Logging.Level = "error"
	cfg.Providers.AviationStackKey = ""
	cfg.Providers.OpenSkyEnabled = false
	cfg.Synthetic.Days = 7
	return cfg
}

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestBuildProviders(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *config.Config)
		want   []string
	}{
		{
			name: "synthetic only",
			modify: func(cfg *config.Config) {
				cfg.Providers.OpenSkyEnabled = false
			},
			want: []string{domain.SourceSynthetic},
		},
		{
			name:   "default without key",
			modify: func(cfg *config.Config) {},
			want:   []string{domain.SourceOpenSky, domain.SourceSynthetic},
		},
		{
			name: "all providers",
			modify: func(cfg *config.Config) {
				cfg.Providers.AviationStackKey = "secret"
			},
			want: []string{domain.SourceAviationStack, domain.SourceOpenSky, domain.SourceSynthetic},
		},
		{
			name: "blank key is ignored",
			modify: func(cfg *config.Config) {
				cfg.Providers.AviationStackKey = "   "
				cfg.Providers.CacheTTL = 0
			},
			want: []string{domain.SourceOpenSky, domain.SourceSynthetic},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)

			providers := BuildProviders(cfg, createTestLogger())
			names := make([]string, len(providers))
			for i, p := range providers {
				names[i] = p.Name()
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestNewApplication(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApplication(cfg)
	require.NoError(t, err)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.Equal(t, []string{domain.SourceSynthetic}, app.Components.Chain.Providers())
	assert.False(t, app.MarketService.AIEnabled())

	for _, dir := range []string{app.Paths.DataDir, app.Paths.ReportsDir, app.Paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestApplication_createServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 9090

	app, err := NewApplication(cfg)
	require.NoError(t, err)

	assert.Equal(t, ":9090", app.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, cfg.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

func TestApplication_setupRouter(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		contentType string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, "application/json"},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK, "application/json"},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK, "application/json"},
		{"version", http.MethodGet, "/api/version", http.StatusOK, "application/json"},
		{"flights", http.MethodGet, "/api/flights", http.StatusOK, "application/json"},
		{"insights", http.MethodGet, "/api/insights?departure_city=New+York", http.StatusOK, "application/json"},
		{"narrative", http.MethodGet, "/api/narrative", http.StatusOK, "application/json"},
		{"filter options", http.MethodGet, "/api/filters/options", http.StatusOK, "application/json"},
		{"csv export", http.MethodGet, "/api/export/csv", http.StatusOK, "text/csv"},
		{"invalid filter", http.MethodGet, "/api/flights?min_price=cheap", http.StatusBadRequest, ""},
		{"unsupported export", http.MethodGet, "/api/export/docx", http.StatusBadRequest, ""},
		{"unknown route", http.MethodGet, "/api/unknown", http.StatusNotFound, ""},
		{"wrong method", http.MethodPost, "/api/flights", http.StatusMethodNotAllowed, ""},
		{"saved reports", http.MethodGet, "/api/reports", http.StatusOK, "application/json"},
		{"save without format", http.MethodPost, "/api/reports", http.StatusBadRequest, ""},
		{"missing saved report", http.MethodGet, "/api/reports/airline_analysis_20240101_000000.pdf", http.StatusNotFound, ""},
		{"refresh", http.MethodPost, "/api/refresh", http.StatusOK, "application/json"},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			app.Router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.contentType != "" {
				assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			}
		})
	}
}

func TestApplication_EmptyFilterResult(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/narrative?departure_city=Atlantis", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "empty", body["status"])
	assert.NotEmpty(t, body["guidance"])
}

func TestApplication_StartStop(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	time.Sleep(50 * time.Millisecond)

	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
	default:
	}

	assert.NoError(t, app.Stop(context.Background()))
}

func TestApplication_SaveAndDownloadReport(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reports?format=csv&airline=Delta", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	location := w.Header().Get("Location")
	require.NotEmpty(t, location)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, location, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.String())
}
