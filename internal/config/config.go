package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"fxcpi/pkg/contracts/domain"
)

// EnvPrefix is the prefix of every environment override, e.g. FXCPI_ANALYSIS_ROLLING_WINDOW
const EnvPrefix = "FXCPI"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"eq=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against Root.
type PathsConfig struct {
	Root         string `yaml:"root" envconfig:"ROOT"`
	CPIPanel     string `yaml:"cpi_panel" envconfig:"CPI_PANEL" validate:"required"`
	FXWorkbook   string `yaml:"fx_workbook" envconfig:"FX_WORKBOOK" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	OutputsDir   string `yaml:"outputs_dir" envconfig:"OUTPUTS_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	WriteBOM     bool   `yaml:"write_bom" envconfig:"WRITE_BOM"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	Environment     string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing   bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceFile       string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	SampleRatio     float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	EnableMetrics   bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsTextfile string  `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then FXCPI_* environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate runs struct tag validation and the date and range checks tags cannot express
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	a := &c.Analysis
	start, err := a.StartDate()
	if err != nil {
		return err
	}
	end, err := a.EndDate()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("analysis start %s must be before end %s", a.Start, a.End)
	}
	if _, err := a.RegimeList(); err != nil {
		return err
	}
	if _, err := a.EventList(); err != nil {
		return err
	}
	if _, err := parseDate("volatility_split.pre_before", a.VolatilitySplit.PreBefore); err != nil {
		return err
	}
	if _, err := parseDate("volatility_split.post_start", a.VolatilitySplit.PostStart); err != nil {
		return err
	}

	known := make(map[string]bool, len(a.Categories))
	for _, cat := range a.Categories {
		if known[cat.Name] {
			return fmt.Errorf("duplicate category %s", cat.Name)
		}
		known[cat.Name] = true
	}
	known[ServicesProxyColumn] = true
	for _, group := range [][]string{a.ServicesComponents, a.InflationCategories, a.RollingCategories, a.RegimeTargets} {
		for _, name := range group {
			if !known[name] {
				return fmt.Errorf("unknown category %s", name)
			}
		}
	}
	return nil
}

// getConfigFilePath returns the first config file found in common locations
func getConfigFilePath() string {
	locations := []string{
		"fxcpi.yaml",
		"configs/fxcpi.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return t, nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/fxcpi.log",
		},
		Paths: PathsConfig{
			Root:         ".",
			CPIPanel:     DefaultCPIPanel,
			FXWorkbook:   DefaultFXWorkbook,
			ProcessedDir: DefaultProcessedDir,
			OutputsDir:   DefaultOutputsDir,
			LogsDir:      DefaultLogsDir,
		},
		Telemetry: TelemetryConfig{
			Environment:     "development",
			EnableTracing:   false,
			SampleRatio:     1.0,
			EnableMetrics:   true,
			MetricsTextfile: "outputs/fxcpi.prom",
		},
		Analysis: DefaultAnalysis(),
	}
}
