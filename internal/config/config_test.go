package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "agro_advisory", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)

	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.Forecast.BaseURL)
	assert.Equal(t, "Africa/Nairobi", cfg.Forecast.Timezone)
	assert.Equal(t, 7, cfg.Forecast.Days)
	assert.Equal(t, 10*time.Second, cfg.Forecast.Timeout)
	assert.Equal(t, time.Hour, cfg.Forecast.CacheTTL)
	assert.Equal(t, 256, cfg.Forecast.CacheSize)

	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_CustomEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("DATABASE_NAME", "advisory_test")
	t.Setenv("FORECAST_BASE_URL", "http://localhost:9999/forecast")
	t.Setenv("FORECAST_DAYS", "10")
	t.Setenv("FORECAST_CACHE_TTL", "30m")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "advisory_test", cfg.Database.Database)
	assert.Equal(t, "http://localhost:9999/forecast", cfg.Forecast.BaseURL)
	assert.Equal(t, 10, cfg.Forecast.Days)
	assert.Equal(t, 30*time.Minute, cfg.Forecast.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("FORECAST_TIMEOUT", "not-a-duration")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "server port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero server port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "database port out of range",
			mutate:  func(c *Config) { c.Database.Port = -1 },
			wantErr: "invalid database port",
		},
		{
			name:    "forecast days too small",
			mutate:  func(c *Config) { c.Forecast.Days = 0 },
			wantErr: "forecast days",
		},
		{
			name:    "forecast days beyond provider limit",
			mutate:  func(c *Config) { c.Forecast.Days = 17 },
			wantErr: "forecast days",
		},
		{
			name:    "non-positive forecast timeout",
			mutate:  func(c *Config) { c.Forecast.Timeout = 0 },
			wantErr: "forecast timeout",
		},
		{
			name:    "non-positive cache size",
			mutate:  func(c *Config) { c.Forecast.CacheSize = 0 },
			wantErr: "cache size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
