// Package config provides 12-factor configuration for the capture pipeline.
//
// Configuration is loaded from environment variables with defaults; CLI
// flags override individual values.
//
// Sections:
//   - Capture: scheduler timings and which triggers run
//   - Store: storage root, compression, naming, retention
//   - Upload: collector endpoint and retry budget
//   - Logging: level and output format
//   - Admin: optional local admin API
//   - Source: tree dump polling
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultEndpoint is the production collector URL
const DefaultEndpoint = "https://assistant-cloud.vercel.app/api/upload"

// Config holds all application configuration.
type Config struct {
	Capture CaptureConfig
	Store   StoreConfig
	Upload  UploadConfig
	Logging LogConfig
	Admin   AdminConfig
	Source  SourceConfig
}

// CaptureConfig holds scheduler settings.
type CaptureConfig struct {
	MinInterval     time.Duration `envconfig:"CAPTURE_MIN_INTERVAL" default:"1s"`
	MaxInterval     time.Duration `envconfig:"CAPTURE_MAX_INTERVAL" default:"5s"`
	StaticAfter     time.Duration `envconfig:"CAPTURE_STATIC_AFTER" default:"3s"`
	StaticDelay     time.Duration `envconfig:"CAPTURE_STATIC_DELAY" default:"2s"`
	DynamicDelay    time.Duration `envconfig:"CAPTURE_DYNAMIC_DELAY" default:"500ms"`
	Cadence         time.Duration `envconfig:"CAPTURE_CADENCE" default:"1s"`
	AdaptiveEnabled bool          `envconfig:"CAPTURE_ADAPTIVE_ENABLED" default:"true"`
	CadenceEnabled  bool          `envconfig:"CAPTURE_CADENCE_ENABLED" default:"true"`
}

// StoreConfig holds event store settings.
type StoreConfig struct {
	Dir         string        `envconfig:"STORE_DIR" default:"./data"`
	Compression string        `envconfig:"STORE_COMPRESSION" default:"lz4"`
	UniqueNames bool          `envconfig:"STORE_UNIQUE_NAMES" default:"false"`
	Retention   time.Duration `envconfig:"STORE_RETENTION" default:"72h"`
}

// UploadConfig holds collector settings.
type UploadConfig struct {
	Endpoint    string        `envconfig:"UPLOAD_ENDPOINT" default:"https://assistant-cloud.vercel.app/api/upload"`
	Timeout     time.Duration `envconfig:"UPLOAD_TIMEOUT" default:"30s"`
	MaxAttempts int           `envconfig:"UPLOAD_MAX_ATTEMPTS" default:"3"`
	RetryDelay  time.Duration `envconfig:"UPLOAD_RETRY_DELAY" default:"30s"`
	Grace       time.Duration `envconfig:"UPLOAD_GRACE" default:"5s"`
	DeviceName  string        `envconfig:"UPLOAD_DEVICE_NAME"`
	RateLimit   float64       `envconfig:"UPLOAD_RATE_LIMIT" default:"0"`
	BreakerTrip uint32        `envconfig:"UPLOAD_BREAKER_TRIP" default:"0"` // 0 disables the breaker
	BreakerOpen time.Duration `envconfig:"UPLOAD_BREAKER_OPEN" default:"5m"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// AdminConfig holds admin API configuration.
type AdminConfig struct {
	Enabled      bool     `envconfig:"ADMIN_ENABLED" default:"false"`
	Addr         string   `envconfig:"ADMIN_ADDR" default:"127.0.0.1:8765"`
	AllowOrigins []string `envconfig:"ADMIN_ALLOW_ORIGINS" default:"*"`
	RateLimit    int      `envconfig:"ADMIN_RATE_LIMIT" default:"0"` // requests/s per client, 0 disables
	Burst        int      `envconfig:"ADMIN_BURST" default:"20"`
}

// SourceConfig holds tree dump source configuration.
type SourceConfig struct {
	PollInterval time.Duration `envconfig:"SOURCE_POLL_INTERVAL" default:"250ms"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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
		Capture: CaptureConfig{
			MinInterval:     time.Second,
			MaxInterval:     5 * time.Second,
			StaticAfter:     3 * time.Second,
			StaticDelay:     2 * time.Second,
			DynamicDelay:    500 * time.Millisecond,
			Cadence:         time.Second,
			AdaptiveEnabled: true,
			CadenceEnabled:  true,
		},
		Store: StoreConfig{
			Dir:         "./data",
			Compression: "lz4",
			Retention:   72 * time.Hour,
		},
		Upload: UploadConfig{
			Endpoint:    DefaultEndpoint,
			Timeout:     30 * time.Second,
			MaxAttempts: 3,
			RetryDelay:  30 * time.Second,
			Grace:       5 * time.Second,
			BreakerOpen: 5 * time.Minute,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Admin: AdminConfig{
			Addr:         "127.0.0.1:8765",
			AllowOrigins: []string{"*"},
			Burst:        20,
		},
		Source: SourceConfig{
			PollInterval: 250 * time.Millisecond,
		},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Capture.MinInterval <= 0 || c.Capture.MaxInterval <= 0:
		return fmt.Errorf("capture intervals must be positive")
	case c.Capture.MinInterval > c.Capture.MaxInterval:
		return fmt.Errorf("CAPTURE_MIN_INTERVAL (%s) exceeds CAPTURE_MAX_INTERVAL (%s)", c.Capture.MinInterval, c.Capture.MaxInterval)
	case c.Capture.StaticDelay <= 0 || c.Capture.DynamicDelay <= 0 || c.Capture.Cadence <= 0:
		return fmt.Errorf("capture delays must be positive")
	case c.Store.Dir == "":
		return fmt.Errorf("STORE_DIR is required")
	case c.Upload.Endpoint == "":
		return fmt.Errorf("UPLOAD_ENDPOINT is required")
	case c.Upload.MaxAttempts < 1:
		return fmt.Errorf("UPLOAD_MAX_ATTEMPTS must be at least 1")
	case c.Upload.Timeout <= 0:
		return fmt.Errorf("UPLOAD_TIMEOUT must be positive")
	case c.Admin.RateLimit < 0 || c.Admin.Burst < 1:
		return fmt.Errorf("ADMIN_RATE_LIMIT must be non-negative and ADMIN_BURST at least 1")
	case c.Source.PollInterval <= 0:
		return fmt.Errorf("SOURCE_POLL_INTERVAL must be positive")
	}
	return nil
}
