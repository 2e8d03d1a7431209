package config

import (
	"fmt"
	"os"
	"strconv"

	"epireport/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port                  string `yaml:"port"`
	MaxConcurrentAnalyses int    `yaml:"max_concurrent_analyses"`
	MaxUploadBytes        int64  `yaml:"max_upload_bytes"`
}

// ReportConfig holds narrative settings
type ReportConfig struct {
	// Region is the display name used in the overview sentence
	Region string `yaml:"region"`
	// TopN is the per-tier ranking window
	TopN int `yaml:"top_n"`
}

// LoggingConfig holds log level and format
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OutputConfig holds export paths for the CLI
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when nothing is specified
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  "8080",
			MaxConcurrentAnalyses: 4,
			MaxUploadBytes:        32 << 20,
		},
		Report: ReportConfig{
			Region: "the district",
			TopN:   3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Dir: "out",
		},
	}
}

// Load builds the configuration: defaults, then an optional YAML file
// (EPIREPORT_CONFIG or ./config.yaml), then environment overrides.
// A missing default config file is fine; a missing explicit one is not.
func Load() (*Config, error) {
	cfg := Default()

	explicit := os.Getenv("EPIREPORT_CONFIG")
	path := explicit
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to parse %s", path))
		}
	case os.IsNotExist(err) && explicit == "":
	default:
		return nil, errors.Wrap(err, fmt.Sprintf("failed to read %s", path))
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.MaxConcurrentAnalyses = getEnvIntOrDefault("MAX_CONCURRENT_ANALYSES", cfg.Server.MaxConcurrentAnalyses)
	cfg.Server.MaxUploadBytes = getEnvInt64OrDefault("MAX_UPLOAD_BYTES", cfg.Server.MaxUploadBytes)
	cfg.Report.Region = getEnvOrDefault("REPORT_REGION", cfg.Report.Region)
	cfg.Report.TopN = getEnvIntOrDefault("REPORT_TOP_N", cfg.Report.TopN)
	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Output.Dir = getEnvOrDefault("OUTPUT_DIR", cfg.Output.Dir)
}

func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if cfg.Server.MaxConcurrentAnalyses < 1 {
		return errors.ConfigInvalid("max_concurrent_analyses must be at least 1")
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("max_upload_bytes must be positive")
	}
	if cfg.Report.TopN < 1 {
		return errors.ConfigInvalid("report top_n must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
