package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration, populated from the
// environment (optionally via a .env file for local development).
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Forecast ForecastConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `default:"0.0.0.0"`
	Port         int           `default:"8080"`
	ReadTimeout  time.Duration `split_words:"true" default:"15s"`
	WriteTimeout time.Duration `split_words:"true" default:"15s"`
	IdleTimeout  time.Duration `split_words:"true" default:"60s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `default:"localhost"`
	Port            int           `default:"5432"`
	User            string        `default:"postgres"`
	Password        string        `default:"postgres"`
	Database        string        `envconfig:"NAME" default:"agro_advisory"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	MaxOpenConns    int           `split_words:"true" default:"25"`
	MaxIdleConns    int           `split_words:"true" default:"5"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"5m"`
	ConnMaxIdleTime time.Duration `split_words:"true" default:"1m"`
}

// ForecastConfig holds upstream forecast provider settings.
type ForecastConfig struct {
	BaseURL   string        `split_words:"true" default:"https://api.open-meteo.com/v1/forecast"`
	Timezone  string        `default:"Africa/Nairobi"`
	Days      int           `default:"7"`
	Timeout   time.Duration `default:"10s"`
	CacheTTL  time.Duration `split_words:"true" default:"1h"`
	CacheSize int           `split_words:"true" default:"256"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `default:"info"`
}

// LoadConfig reads configuration from the environment, applying
// defaults where unset. A .env file in the working directory is loaded
// first if present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment is authoritative.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration invariants that envconfig defaults
// cannot express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Forecast.Days < 1 || c.Forecast.Days > 16 {
		return fmt.Errorf("forecast days must be between 1 and 16, got %d", c.Forecast.Days)
	}
	if c.Forecast.Timeout <= 0 {
		return fmt.Errorf("forecast timeout must be positive, got %s", c.Forecast.Timeout)
	}
	if c.Forecast.CacheSize < 1 {
		return fmt.Errorf("forecast cache size must be positive, got %d", c.Forecast.CacheSize)
	}
	return nil
}
