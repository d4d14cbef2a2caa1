// Package config handles configuration loading for finmcp.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Guardrail GuardrailConfig `mapstructure:"guardrail" yaml:"guardrail"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"`
	Provider  ProviderConfig  `mapstructure:"provider"  yaml:"provider"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	MCP       MCPConfig       `mapstructure:"mcp"       yaml:"mcp"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// GuardrailConfig holds input validation and rate limiting settings.
type GuardrailConfig struct {
	RateCapacity        int           `mapstructure:"rate_capacity"         yaml:"rate_capacity"`
	RateWindow          time.Duration `mapstructure:"rate_window"           yaml:"rate_window"`
	WeightTolerance     float64       `mapstructure:"weight_tolerance"      yaml:"weight_tolerance"`
	MaxRangeDays        int           `mapstructure:"max_range_days"        yaml:"max_range_days"`
	CompareMinSymbols   int           `mapstructure:"compare_min_symbols"   yaml:"compare_min_symbols"`
	CompareMaxSymbols   int           `mapstructure:"compare_max_symbols"   yaml:"compare_max_symbols"`
	PortfolioMinSymbols int           `mapstructure:"portfolio_min_symbols" yaml:"portfolio_min_symbols"`
	PortfolioMaxSymbols int           `mapstructure:"portfolio_max_symbols" yaml:"portfolio_max_symbols"`
}

// AnalysisConfig holds analytics engine settings.
type AnalysisConfig struct {
	RiskFreeRate           float64       `mapstructure:"risk_free_rate"           yaml:"risk_free_rate"` // annual
	MinRiskPoints          int           `mapstructure:"min_risk_points"          yaml:"min_risk_points"`
	MinTrendPoints         int           `mapstructure:"min_trend_points"         yaml:"min_trend_points"`
	MAWindows              []int         `mapstructure:"ma_windows"               yaml:"ma_windows"`
	VaRConfidenceLevels    []float64     `mapstructure:"var_confidence_levels"    yaml:"var_confidence_levels"`
	OptimizerStep          float64       `mapstructure:"optimizer_step"           yaml:"optimizer_step"`
	OptimizerMaxCandidates int           `mapstructure:"optimizer_max_candidates" yaml:"optimizer_max_candidates"`
	ConcurrentFetches      int           `mapstructure:"concurrent_fetches"       yaml:"concurrent_fetches"`
	RequestTimeout         time.Duration `mapstructure:"request_timeout"          yaml:"request_timeout"`
	DefaultBenchmark       string        `mapstructure:"default_benchmark"        yaml:"default_benchmark"`
}

// ProviderConfig holds market-data provider settings.
type ProviderConfig struct {
	BaseURL         string        `mapstructure:"base_url"          yaml:"base_url"`
	NewsURL         string        `mapstructure:"news_url"          yaml:"news_url"` // %s is replaced by the symbol
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"      yaml:"http_timeout"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	MaxHistoryYears int           `mapstructure:"max_history_years" yaml:"max_history_years"`
	Headlines       int           `mapstructure:"headlines"         yaml:"headlines"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	// Markdown adds a rendered Markdown block after the JSON result.
	Markdown bool `mapstructure:"markdown" yaml:"markdown"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finmcp/config.yaml (home directory)
//  3. /etc/finmcp/config.yaml (system)
//
// Environment variables override config file values, and a .env file in
// the working directory is loaded first if present.
// Format: FINMCP_<SECTION>_<KEY>, e.g., FINMCP_GUARDRAIL_RATE_CAPACITY
func Load() (*Config, error) {
	_ = godotenv.Load()
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finmcp"))
	v.AddConfigPath("/etc/finmcp")

	v.SetEnvPrefix("FINMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FINMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := unmarshal(v)
	if err != nil {
		// Defaults are static; failing to decode them is a programming error.
		panic(err)
	}
	return cfg
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	// Windows are short, medium, long whatever order the file lists them in.
	cfg.Analysis.MAWindows = slices.Sorted(slices.Values(cfg.Analysis.MAWindows))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	g, a := c.Guardrail, c.Analysis
	switch {
	case g.RateCapacity <= 0:
		return fmt.Errorf("guardrail.rate_capacity must be positive, got %d", g.RateCapacity)
	case g.RateWindow <= 0:
		return fmt.Errorf("guardrail.rate_window must be positive, got %s", g.RateWindow)
	case g.WeightTolerance <= 0 || g.WeightTolerance >= 1:
		return fmt.Errorf("guardrail.weight_tolerance must be in (0, 1), got %g", g.WeightTolerance)
	case g.CompareMinSymbols < 2 || g.CompareMaxSymbols < g.CompareMinSymbols:
		return fmt.Errorf("guardrail compare symbol bounds invalid: %d..%d", g.CompareMinSymbols, g.CompareMaxSymbols)
	case g.PortfolioMinSymbols < 2 || g.PortfolioMaxSymbols < g.PortfolioMinSymbols:
		return fmt.Errorf("guardrail portfolio symbol bounds invalid: %d..%d", g.PortfolioMinSymbols, g.PortfolioMaxSymbols)
	case a.OptimizerStep <= 0 || a.OptimizerStep > 0.5:
		return fmt.Errorf("analysis.optimizer_step must be in (0, 0.5], got %g", a.OptimizerStep)
	case a.OptimizerMaxCandidates <= 0:
		return fmt.Errorf("analysis.optimizer_max_candidates must be positive")
	case a.MinRiskPoints < 2:
		return fmt.Errorf("analysis.min_risk_points must be at least 2")
	case len(a.MAWindows) != 3:
		return fmt.Errorf("analysis.ma_windows needs 3 windows (short, medium, long), got %d", len(a.MAWindows))
	case a.MAWindows[0] < 2 || a.MAWindows[0] >= a.MAWindows[1] || a.MAWindows[1] >= a.MAWindows[2]:
		return fmt.Errorf("analysis.ma_windows must be distinct, ascending and at least 2, got %v", a.MAWindows)
	}
	for _, lvl := range a.VaRConfidenceLevels {
		if lvl <= 0 || lvl >= 1 {
			return fmt.Errorf("analysis.var_confidence_levels: %g not in (0, 1)", lvl)
		}
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Guardrail defaults
	v.SetDefault("guardrail.rate_capacity", 30)
	v.SetDefault("guardrail.rate_window", time.Minute)
	v.SetDefault("guardrail.weight_tolerance", 1e-3)
	v.SetDefault("guardrail.max_range_days", 5*365)
	v.SetDefault("guardrail.compare_min_symbols", 2)
	v.SetDefault("guardrail.compare_max_symbols", 10)
	v.SetDefault("guardrail.portfolio_min_symbols", 2)
	v.SetDefault("guardrail.portfolio_max_symbols", 20)

	// Analysis defaults
	v.SetDefault("analysis.risk_free_rate", 0.02)
	v.SetDefault("analysis.min_risk_points", 20)
	v.SetDefault("analysis.min_trend_points", 50)
	v.SetDefault("analysis.ma_windows", []int{20, 50, 200})
	v.SetDefault("analysis.var_confidence_levels", []float64{0.95, 0.99})
	v.SetDefault("analysis.optimizer_step", 0.05)
	v.SetDefault("analysis.optimizer_max_candidates", 200000)
	v.SetDefault("analysis.concurrent_fetches", 5)
	v.SetDefault("analysis.request_timeout", 30*time.Second)
	v.SetDefault("analysis.default_benchmark", "^GSPC")

	// Provider defaults
	v.SetDefault("provider.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.news_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")
	v.SetDefault("provider.http_timeout", 15*time.Second)
	v.SetDefault("provider.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	v.SetDefault("provider.max_history_years", 20)
	v.SetDefault("provider.headlines", 5)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("mcp.name", "finmcp")
	v.SetDefault("mcp.markdown", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
