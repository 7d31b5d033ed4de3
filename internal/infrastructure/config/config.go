// Package config provides 12-factor configuration for the backend.
//
// Configuration is loaded from environment variables with sensible
// defaults. The server binds to loopback only: the sole client is the
// GUI frontend on the same machine.
//
// Environment Variables:
//   - PORT, HOST
//   - APP_NAME, DATABASE_FILE, BASE_DIR
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8170"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// AppConfig holds application identity and database settings.
type AppConfig struct {
	// Name is the folder name under the user's document area and the
	// OS temp area.
	Name string `envconfig:"APP_NAME" default:"PBS_Admin"`

	// DatabaseFile is the database filename inside the data root.
	DatabaseFile string `envconfig:"DATABASE_FILE" default:"pbs_admin.db"`

	// BaseDir overrides the document-area base directory when set.
	// Empty means derive it from the user profile.
	BaseDir string `envconfig:"BASE_DIR" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
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
		Server: ServerConfig{
			Port: "8170",
			Host: "127.0.0.1",
		},
		App: AppConfig{
			Name:         "PBS_Admin",
			DatabaseFile: "pbs_admin.db",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
