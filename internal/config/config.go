package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the inspection system
type Config struct {
	// Observability server
	HTTPPort int    `env:"INSPECT_HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Capture sources
	Sources SourceConfig

	// Cycle orchestration
	Cycle CycleConfig

	// Driver loop
	Driver DriverConfig

	// Aggregation
	Aggregation AggregationConfig

	// Event sink
	Events EventConfig
}

// SourceConfig holds capture source configuration
type SourceConfig struct {
	// IDs lists the registered source identifiers, comma separated.
	IDs []string `env:"INSPECT_SOURCE_IDS" envDefault:"CAM_01,CAM_02" envSeparator:","`

	Width  int `env:"INSPECT_FRAME_WIDTH" envDefault:"1920"`
	Height int `env:"INSPECT_FRAME_HEIGHT" envDefault:"1080"`

	// Simulated capture behavior
	LatencyMin  time.Duration `env:"INSPECT_CAPTURE_LATENCY_MIN" envDefault:"50ms"`
	LatencyMax  time.Duration `env:"INSPECT_CAPTURE_LATENCY_MAX" envDefault:"150ms"`
	FailureRate float64       `env:"INSPECT_CAPTURE_FAILURE_RATE" envDefault:"0.05"`
}

// CycleConfig holds per-cycle timing and retry policy
type CycleConfig struct {
	Deadline       time.Duration `env:"INSPECT_CYCLE_DEADLINE" envDefault:"5s"`
	Grace          time.Duration `env:"INSPECT_CYCLE_GRACE" envDefault:"250ms"`
	MaxAttempts    int           `env:"INSPECT_CAPTURE_MAX_ATTEMPTS" envDefault:"3"`
	RetryDelay     time.Duration `env:"INSPECT_CAPTURE_RETRY_DELAY" envDefault:"50ms"`
	AttemptTimeout time.Duration `env:"INSPECT_CAPTURE_ATTEMPT_TIMEOUT" envDefault:"1s"`
}

// DriverConfig holds driver loop configuration
type DriverConfig struct {
	Cycles   int           `env:"INSPECT_CYCLES" envDefault:"10"`
	Interval time.Duration `env:"INSPECT_CYCLE_INTERVAL" envDefault:"500ms"`

	// HistorySize bounds how many cycle reports the observability API
	// retains.
	HistorySize int `env:"INSPECT_REPORT_HISTORY" envDefault:"100"`
}

// AggregationConfig holds pass/fail policy
type AggregationConfig struct {
	PassThreshold float64 `env:"INSPECT_PASS_THRESHOLD" envDefault:"0.75"`
}

// EventConfig holds event sink configuration
type EventConfig struct {
	BufferSize int `env:"INSPECT_EVENT_BUFFER" envDefault:"256"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for i, id := range cfg.Sources.IDs {
		cfg.Sources.IDs[i] = strings.TrimSpace(id)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if len(c.Sources.IDs) == 0 {
		return fmt.Errorf("at least one capture source is required")
	}
	seen := make(map[string]bool)
	for _, id := range c.Sources.IDs {
		if id == "" {
			return fmt.Errorf("empty source id")
		}
		if seen[id] {
			return fmt.Errorf("duplicate source id: %s", id)
		}
		seen[id] = true
	}
	if c.Sources.LatencyMin < 0 || c.Sources.LatencyMax < c.Sources.LatencyMin {
		return fmt.Errorf("invalid capture latency range: %s..%s",
			c.Sources.LatencyMin, c.Sources.LatencyMax)
	}
	if c.Sources.FailureRate < 0 || c.Sources.FailureRate > 1 {
		return fmt.Errorf("capture failure rate must be in [0,1]: %f", c.Sources.FailureRate)
	}

	if c.Cycle.Deadline <= 0 {
		return fmt.Errorf("cycle deadline must be positive")
	}
	if c.Cycle.Grace < 0 {
		return fmt.Errorf("cycle grace period must be non-negative")
	}
	if c.Cycle.MaxAttempts < 1 {
		return fmt.Errorf("max capture attempts must be at least 1")
	}
	if c.Cycle.RetryDelay < 0 {
		return fmt.Errorf("capture retry delay must be non-negative")
	}
	if c.Cycle.AttemptTimeout <= 0 || c.Cycle.AttemptTimeout > c.Cycle.Deadline {
		return fmt.Errorf("capture attempt timeout must be a sub-budget of the cycle deadline")
	}

	if c.Driver.Cycles < 0 {
		return fmt.Errorf("cycle count must be non-negative")
	}
	if c.Driver.Interval < 0 {
		return fmt.Errorf("cycle interval must be non-negative")
	}
	if c.Driver.HistorySize < 1 {
		return fmt.Errorf("report history size must be at least 1")
	}

	if c.Aggregation.PassThreshold < 0 || c.Aggregation.PassThreshold > 1 {
		return fmt.Errorf("pass threshold must be in [0,1]: %f", c.Aggregation.PassThreshold)
	}

	if c.Events.BufferSize < 1 {
		return fmt.Errorf("event buffer size must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the observability server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
