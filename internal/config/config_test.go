package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 10*time.Second, cfg.Providers.Timeout)
				assert.Equal(t, uint64(42), cfg.Synthetic.Seed)
				assert.Equal(t, 30, cfg.Synthetic.Days)
				assert.Equal(t, "airline_analysis", cfg.Export.FilePrefix)
				assert.False(t, cfg.AviationStackEnabled())
				assert.False(t, cfg.NarrativeEnabled())
			},
		},
		{
			name: "env overrides defaults",
			env: map[string]string{
				"AIRMARKET_SERVER_PORT":                 "9090",
				"AIRMARKET_PROVIDERS_AVIATIONSTACK_KEY": "secret",
				"AIRMARKET_PROVIDERS_TIMEOUT":           "3s",
				"AIRMARKET_SYNTHETIC_DAYS":              "7",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.True(t, cfg.AviationStackEnabled())
				assert.Equal(t, 3*time.Second, cfg.Providers.Timeout)
				assert.Equal(t, 7, cfg.Synthetic.Days)
			},
		},
		{
			name: "file values survive when env is unset",
			file: "server:\n  port: 7000\nsynthetic:\n  seed: 7\nlogging:\n  format: yaml\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7000, cfg.Server.Port)
				assert.Equal(t, uint64(7), cfg.Synthetic.Seed)
				assert.Equal(t, 30, cfg.Synthetic.Days)
				assert.Equal(t, "json", cfg.Logging.Format, "unknown formats fall back to json")
			},
		},
		{
			name: "env beats file",
			file: "server:\n  port: 7000\n",
			env:  map[string]string{"AIRMARKET_SERVER_PORT": "7001"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7001, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"AIRMARKET_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "negative synthetic days",
			env:     map[string]string{"AIRMARKET_SYNTHETIC_DAYS": "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0644))
				t.Setenv(ConfigFileEnv, path)
			} else {
				t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestGetPaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.LogsDir = filepath.Join(base, "abs-logs")

	paths, err := cfg.GetPaths()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data", "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, "abs-logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "x.csv"), paths.GetReportPath("x.csv"))

	require.NoError(t, paths.EnsureDirectories())
	assert.True(t, FileExists(paths.ReportsDir))
	assert.True(t, FileExists(paths.LogsDir))
}
