package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v2"

	"oddscli/internal/schema"
)

// EnvPrefix prefixes every environment variable read by Load (ODDS_LOGGING_LEVEL, ...).
const EnvPrefix = "ODDS"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Collector CollectorConfig `yaml:"collector" envconfig:"COLLECTOR"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Schedule  ScheduleConfig  `yaml:"schedule" envconfig:"SCHEDULE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"` // console, file or both
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// Relative directories are resolved against BaseDir, or the executable directory when BaseDir is empty.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	ExportDir  string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
	SeriesName string `yaml:"series_name" envconfig:"SERIES_NAME"`
}

// IngestConfig tunes the ingestion transaction and the operator flow around it
type IngestConfig struct {
	SumTolerance  float64 `yaml:"sum_tolerance" envconfig:"SUM_TOLERANCE"`
	SpotCheckRows int     `yaml:"spot_check_rows" envconfig:"SPOT_CHECK_ROWS"` // rows shown after an ingestion
	ShowLast      bool    `yaml:"show_last" envconfig:"SHOW_LAST"`
}

// CollectorConfig contains market page scraping and indicator settings
type CollectorConfig struct {
	NationalURL   string            `yaml:"national_url" envconfig:"NATIONAL_URL"`
	StateURLs     map[string]string `yaml:"state_urls" envconfig:"STATE_URLS"`
	Headless      bool              `yaml:"headless" envconfig:"HEADLESS"`
	RatePerSecond float64           `yaml:"rate_per_second" envconfig:"RATE_PER_SECOND"`
	Burst         int               `yaml:"burst" envconfig:"BURST"`
	Concurrency   int               `yaml:"concurrency" envconfig:"CONCURRENCY"`
	PageTimeout   time.Duration     `yaml:"page_timeout" envconfig:"PAGE_TIMEOUT"`
	RenderWait    time.Duration     `yaml:"render_wait" envconfig:"RENDER_WAIT"`
	Lookback      time.Duration     `yaml:"lookback" envconfig:"LOOKBACK"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT"` // requests per second, 0 disables
	RateBurst       int           `yaml:"rate_burst" envconfig:"RATE_BURST"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName     string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment     string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	Tracing         bool    `yaml:"tracing" envconfig:"TRACING"`
	TraceFile       string  `yaml:"trace_file" envconfig:"TRACE_FILE"` // empty writes spans to stderr
	SampleRatio     float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
	Metrics         bool    `yaml:"metrics" envconfig:"METRICS"`
	MetricsTextfile string  `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
	RuntimeMetrics  bool    `yaml:"runtime_metrics" envconfig:"RUNTIME_METRICS"` // Go runtime and process collectors
}

// ScheduleConfig contains the cron schedule for unattended collection
type ScheduleConfig struct {
	Cron       string `yaml:"cron" envconfig:"CRON"`
	RunOnStart bool   `yaml:"run_on_start" envconfig:"RUN_ON_START"`
}

// Load builds the configuration from defaults, an optional YAML file and the environment,
// in increasing precedence. A .env file in the working directory is loaded first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Variables that are unset leave the file and default values alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns ODDS_CONFIG_FILE or the first config file found in common locations
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
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
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server rate limit must not be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = 1
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q, want console, file or both", c.Logging.Output)
	}

	if c.Paths.SeriesName == "" {
		return fmt.Errorf("series name must not be empty")
	}
	if strings.ContainsAny(c.Paths.SeriesName, `/\`) {
		return fmt.Errorf("series name must not contain path separators: %q", c.Paths.SeriesName)
	}

	if c.Ingest.SumTolerance < 0 {
		return fmt.Errorf("sum tolerance must not be negative: %v", c.Ingest.SumTolerance)
	}
	if c.Ingest.SpotCheckRows < 0 {
		return fmt.Errorf("spot check rows must not be negative: %d", c.Ingest.SpotCheckRows)
	}

	if c.Collector.NationalURL == "" {
		return fmt.Errorf("collector national url must be set")
	}
	for _, state := range schema.States {
		if c.Collector.StateURLs[state] == "" {
			return fmt.Errorf("collector url for %s must be set", state)
		}
	}
	for state := range c.Collector.StateURLs {
		if !schema.IsState(state) {
			return fmt.Errorf("collector url configured for untracked state %q", state)
		}
	}
	if c.Collector.RatePerSecond <= 0 {
		return fmt.Errorf("collector rate must be positive")
	}
	if c.Collector.Concurrency <= 0 {
		c.Collector.Concurrency = 1
	}
	if c.Collector.Burst <= 0 {
		c.Collector.Burst = 1
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0, 1]: %v", c.Telemetry.SampleRatio)
	}

	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.Schedule.Cron, err)
		}
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "",
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			LogsDir:    DefaultLogsDir,
			ExportDir:  DefaultExportDir,
			SeriesName: DefaultSeriesName,
		},
		Ingest: IngestConfig{
			SumTolerance:  DefaultSumTolerance,
			SpotCheckRows: DefaultSpotCheckRows,
			ShowLast:      true,
		},
		Collector: CollectorConfig{
			NationalURL:   DefaultNationalURL,
			StateURLs:     DefaultStateURLs(),
			Headless:      true,
			RatePerSecond: 0.5,
			Burst:         1,
			Concurrency:   2,
			PageTimeout:   DefaultPageTimeout,
			RenderWait:    DefaultRenderWait,
			Lookback:      DefaultIndicatorLookback,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       20,
			RateBurst:       40,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			Tracing:        false,
			SampleRatio:    1.0,
			Metrics:        true,
			RuntimeMetrics: true,
		},
	}
}

// DefaultStateURLs returns the winner market page of every tracked state.
func DefaultStateURLs() map[string]string {
	urls := make(map[string]string, len(schema.States))
	for _, state := range schema.States {
		slug := strings.ReplaceAll(schema.StateSlug(state), "_", "-")
		urls[state] = fmt.Sprintf(stateURLPattern, slug)
	}
	return urls
}
