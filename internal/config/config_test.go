package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Guardrail.RateCapacity)
	assert.Equal(t, time.Minute, cfg.Guardrail.RateWindow)
	assert.Equal(t, 1e-3, cfg.Guardrail.WeightTolerance)
	assert.Equal(t, 1825, cfg.Guardrail.MaxRangeDays)
	assert.Equal(t, 2, cfg.Guardrail.CompareMinSymbols)
	assert.Equal(t, 10, cfg.Guardrail.CompareMaxSymbols)
	assert.Equal(t, 20, cfg.Guardrail.PortfolioMaxSymbols)

	assert.Equal(t, 0.02, cfg.Analysis.RiskFreeRate)
	assert.Equal(t, 20, cfg.Analysis.MinRiskPoints)
	assert.Equal(t, 50, cfg.Analysis.MinTrendPoints)
	assert.Equal(t, []int{20, 50, 200}, cfg.Analysis.MAWindows)
	assert.Equal(t, []float64{0.95, 0.99}, cfg.Analysis.VaRConfidenceLevels)
	assert.Equal(t, 0.05, cfg.Analysis.OptimizerStep)
	assert.Equal(t, 5, cfg.Analysis.ConcurrentFetches)
	assert.Equal(t, 30*time.Second, cfg.Analysis.RequestTimeout)
	assert.Equal(t, "^GSPC", cfg.Analysis.DefaultBenchmark)

	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Provider.BaseURL)
	assert.Equal(t, 20, cfg.Provider.MaxHistoryYears)

	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "finmcp", cfg.MCP.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestDefaultMatchesLoad(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "test_config.yaml")
	content := []byte(`
guardrail:
  rate_capacity: 5
  rate_window: 2m
analysis:
  risk_free_rate: 0.045
  ma_windows: [100, 10, 30]
  optimizer_step: 0.1
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	require.NoError(t, os.WriteFile(cfgPath, content, 0o644))

	cfg, err := LoadFromFile(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Guardrail.RateCapacity)
	assert.Equal(t, 2*time.Minute, cfg.Guardrail.RateWindow)
	assert.Equal(t, 0.045, cfg.Analysis.RiskFreeRate)
	assert.Equal(t, []int{10, 30, 100}, cfg.Analysis.MAWindows, "windows are sorted")
	assert.Equal(t, 0.1, cfg.Analysis.OptimizerStep)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, 1e-3, cfg.Guardrail.WeightTolerance)
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api:\n  port: 9090\n"), 0o644))
	t.Setenv("FINMCP_API_PORT", "7070")
	t.Setenv("FINMCP_GUARDRAIL_RATE_CAPACITY", "12")

	cfg, err := LoadFromFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.API.Port)
	assert.Equal(t, 12, cfg.Guardrail.RateCapacity)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FINMCP_API_PORT=9191\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	// Registers a restore; godotenv only fills unset variables.
	t.Setenv("FINMCP_API_PORT", "")
	require.NoError(t, os.Unsetenv("FINMCP_API_PORT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.API.Port)
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero capacity", "guardrail:\n  rate_capacity: 0\n"},
		{"tolerance too wide", "guardrail:\n  weight_tolerance: 2\n"},
		{"bad optimizer step", "analysis:\n  optimizer_step: 0\n"},
		{"bad confidence", "analysis:\n  var_confidence_levels: [0.95, 1.5]\n"},
		{"compare bounds", "guardrail:\n  compare_min_symbols: 1\n"},
		{"two windows", "analysis:\n  ma_windows: [10, 30]\n"},
		{"duplicate windows", "analysis:\n  ma_windows: [20, 20, 200]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(p, []byte(tt.yaml), 0o644))
			_, err := LoadFromFile(p)
			assert.Error(t, err)
		})
	}
}
