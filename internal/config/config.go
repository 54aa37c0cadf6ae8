// Package config defines service configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers a YAML file and TOURDESK_* env vars over the defaults.
// - Validation failures wrap ErrInvalidConfig; loader failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DefaultPageSize applies when GET /requests omits pageSize.
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize caps GET /requests?pageSize.
	MaxPageSize int `koanf:"max_page_size"`

	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// SeedData loads the demo registration requests at startup.
	SeedData bool `koanf:"seed_data"`

	// ReviewQueueSize bounds the in-memory review decision queue.
	ReviewQueueSize int `koanf:"review_queue_size"`

	// ReviewWorkerCount sets the number of decision workers.
	ReviewWorkerCount int `koanf:"review_worker_count"`

	// DecisionTTLSeconds expires decision idempotency keys; 0 keeps them forever.
	DecisionTTLSeconds int `koanf:"decision_ttl_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":5000",
		DefaultPageSize:    10,
		MaxPageSize:        100,
		MaxBodyBytes:       1 << 20,
		SeedData:           true,
		ReviewQueueSize:    1024,
		ReviewWorkerCount:  runtime.NumCPU(),
		DecisionTTLSeconds: 0,
	}
}

// DecisionTTL returns DecisionTTLSeconds as a duration.
func (c *Config) DecisionTTL() time.Duration {
	return time.Duration(c.DecisionTTLSeconds) * time.Second
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultPageSize < 1:
		return fmt.Errorf("%w: default_page_size must be positive", ErrInvalidConfig)
	case c.MaxPageSize < c.DefaultPageSize:
		return fmt.Errorf("%w: max_page_size must be >= default_page_size", ErrInvalidConfig)
	case c.MaxBodyBytes < 1:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.ReviewQueueSize < 1:
		return fmt.Errorf("%w: review_queue_size must be positive", ErrInvalidConfig)
	case c.ReviewWorkerCount < 1:
		return fmt.Errorf("%w: review_worker_count must be positive", ErrInvalidConfig)
	case c.DecisionTTLSeconds < 0:
		return fmt.Errorf("%w: decision_ttl_seconds must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
