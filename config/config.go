// Package config loads pipeline settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Swind/go-task-pipeline/logging"
)

// Config holds all application configuration.
type Config struct {
	Pipeline PipelineConfig
	Logging  LogConfig
	Metrics  MetricsConfig
}

// PipelineConfig holds pipeline identity and status reporting settings.
type PipelineConfig struct {
	Name           string        `envconfig:"PIPELINE_NAME" default:"shared"`
	StatusInterval time.Duration `envconfig:"STATUS_INTERVAL" default:"1s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds Prometheus exporter configuration.
// An empty Addr disables the HTTP endpoint.
type MetricsConfig struct {
	Addr         string        `envconfig:"METRICS_ADDR" default:""`
	Namespace    string        `envconfig:"METRICS_NAMESPACE" default:"pipeline"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Name:           "shared",
			StatusInterval: time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Namespace:    "pipeline",
			PollInterval: time.Second,
		},
	}
}

// LoggingConfig converts the log settings into a logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Logging.Development {
		cfg = logging.DevelopmentConfig()
	}
	if c.Logging.Level != "" {
		cfg.Level = c.Logging.Level
	}
	return cfg
}
