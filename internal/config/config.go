package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "AIRMARKET"

// ConfigFileEnv names the variable that points at an explicit YAML file
const ConfigFileEnv = "AIRMARKET_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Providers ProvidersConfig `yaml:"providers" envconfig:"PROVIDERS"`
	Synthetic SyntheticConfig `yaml:"synthetic" envconfig:"SYNTHETIC"`
	Narrative NarrativeConfig `yaml:"narrative" envconfig:"NARRATIVE"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ProvidersConfig configures the live flight data sources
type ProvidersConfig struct {
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`

	AviationStackKey   string `yaml:"aviationstack_key" envconfig:"AVIATIONSTACK_KEY"`
	AviationStackURL   string `yaml:"aviationstack_url" envconfig:"AVIATIONSTACK_URL"`
	AviationStackLimit int    `yaml:"aviationstack_limit" envconfig:"AVIATIONSTACK_LIMIT"`

	OpenSkyEnabled     bool          `yaml:"opensky_enabled" envconfig:"OPENSKY_ENABLED"`
	OpenSkyURL         string        `yaml:"opensky_url" envconfig:"OPENSKY_URL"`
	OpenSkyLookback    time.Duration `yaml:"opensky_lookback" envconfig:"OPENSKY_LOOKBACK"`
	OpenSkyLimit       int           `yaml:"opensky_limit" envconfig:"OPENSKY_LIMIT"`
	OpenSkyMinInterval time.Duration `yaml:"opensky_min_interval" envconfig:"OPENSKY_MIN_INTERVAL"`
}

// SyntheticConfig configures the deterministic sample generator
type SyntheticConfig struct {
	Seed uint64 `yaml:"seed" envconfig:"SEED"`
	Days int    `yaml:"days" envconfig:"DAYS"`
}

// NarrativeConfig configures the optional AI narrative collaborator
type NarrativeConfig struct {
	APIKey    string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL   string        `yaml:"base_url" envconfig:"BASE_URL"`
	Model     string        `yaml:"model" envconfig:"MODEL"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	MaxTokens int64         `yaml:"max_tokens" envconfig:"MAX_TOKENS"`
}

// ExportConfig configures report serialization
type ExportConfig struct {
	FilePrefix    string `yaml:"file_prefix" envconfig:"FILE_PREFIX"`
	PDFSampleSize int    `yaml:"pdf_sample_size" envconfig:"PDF_SAMPLE_SIZE"`

	// RetainReports caps the saved reports kept in the reports directory;
	// zero keeps everything
	RetainReports int `yaml:"retain_reports" envconfig:"RETAIN_REPORTS"`
}

// TelemetryConfig configures OpenTelemetry
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	ServiceVersion string  `yaml:"service_version" envconfig:"SERVICE_VERSION"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, an optional YAML file and
// AIRMARKET_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// Struct fields carry no default tags so that only variables that are
	// actually set override file and default values.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}

	if c.Providers.AviationStackLimit <= 0 || c.Providers.OpenSkyLimit <= 0 {
		return fmt.Errorf("provider record limits must be positive")
	}

	if c.Synthetic.Days < 0 {
		return fmt.Errorf("synthetic day count must not be negative: %d", c.Synthetic.Days)
	}

	if c.Export.PDFSampleSize <= 0 {
		return fmt.Errorf("pdf sample size must be positive")
	}

	if c.Export.RetainReports < 0 {
		return fmt.Errorf("report retention must not be negative: %d", c.Export.RetainReports)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0,1]: %v", c.Telemetry.SampleRatio)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	return nil
}

// AviationStackEnabled reports whether the credentialed provider can be used
func (c *Config) AviationStackEnabled() bool {
	return strings.TrimSpace(c.Providers.AviationStackKey) != ""
}

// NarrativeEnabled reports whether the AI narrative collaborator is configured
func (c *Config) NarrativeEnabled() bool {
	return strings.TrimSpace(c.Narrative.APIKey) != ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/airmarket.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Providers: ProvidersConfig{
			Timeout:            10 * time.Second,
			CacheTTL:           5 * time.Minute,
			AviationStackURL:   "http://api.aviationstack.com/v1",
			AviationStackLimit: 100,
			OpenSkyEnabled:     true,
			OpenSkyURL:         "https://opensky-network.org/api",
			OpenSkyLookback:    2 * time.Hour,
			OpenSkyLimit:       100,
			OpenSkyMinInterval: 10 * time.Second,
		},
		Synthetic: SyntheticConfig{
			Seed: 42,
			Days: 30,
		},
		Narrative: NarrativeConfig{
			Model:     "gpt-4o-mini",
			Timeout:   30 * time.Second,
			MaxTokens: 600,
		},
		Export: ExportConfig{
			FilePrefix:    "airline_analysis",
			PDFSampleSize: 10,
			RetainReports: 50,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "airmarket",
			ServiceVersion: "dev",
			Environment:    "development",
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "stdout",
			SampleRatio:    1.0,
		},
	}
}
