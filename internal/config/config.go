package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the storage core.
// Environment variables are automatically parsed from the WORKFLOWS_ prefix.
type Config struct {
	// Driver selects the KV engine: memory, sqlite, postgres or auto.
	// auto derives the driver from which backend settings are present.
	Driver string `envconfig:"DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// SQLite Configuration
	SQLitePath string `envconfig:"SQLITE_PATH" default:""`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Intent sweeper: records younger than SweepMinAge are presumed to
	// belong to in-flight operations and are left alone.
	SweepMinAge time.Duration `envconfig:"SWEEP_MIN_AGE" default:"1m"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// ResolveDefaults validates Driver and derives it when set to "auto" or
// empty: postgres when a DSN is present, sqlite when a path is present,
// memory otherwise.
func (c *Config) ResolveDefaults() error {
	if c.Driver == "" || c.Driver == "auto" {
		switch {
		case c.PostgresDSN != "":
			c.Driver = "postgres"
		case c.SQLitePath != "":
			c.Driver = "sqlite"
		default:
			c.Driver = "memory"
		}
	}

	switch c.Driver {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("WORKFLOWS_SQLITE_PATH is required when DRIVER=sqlite")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("WORKFLOWS_POSTGRES_DSN is required when DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DRIVER: %s", c.Driver)
	}
	if c.SweepMinAge <= 0 {
		return fmt.Errorf("WORKFLOWS_SWEEP_MIN_AGE must be positive, got %s", c.SweepMinAge)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with WORKFLOWS_
// Example: WORKFLOWS_DRIVER, WORKFLOWS_SQLITE_PATH
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("WORKFLOWS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("driver", cfg.Driver).
		Str("environment", string(cfg.Environment)).
		Str("sqlite_path", cfg.SQLitePath).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Dur("sweep_min_age", cfg.SweepMinAge).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Driver:      "memory",
		Environment: EnvTesting,
		SweepMinAge: time.Second,
		LogLevel:    "debug",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
