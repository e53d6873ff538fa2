package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.HomeAssistant.Token = testToken
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
	assert.Equal(t, 30, cfg.Server.WriteTimeout)
	assert.Zero(t, cfg.Server.StartupDelayMS)

	// Home Assistant defaults
	assert.Equal(t, "http://localhost:8123", cfg.HomeAssistant.URL)
	assert.Empty(t, cfg.HomeAssistant.Token)
	assert.Equal(t, 10, cfg.HomeAssistant.TimeoutSeconds)
	assert.Equal(t, 10*time.Second, cfg.HomeAssistant.Timeout())

	// Favorites defaults
	assert.Equal(t, "sqlite", cfg.Favorites.Backend)
	assert.Equal(t, "./data/favorites.db", cfg.Favorites.Path)

	// Rate limit defaults
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMin)
	assert.Equal(t, "local", cfg.RateLimit.Backend)

	// API and logging defaults
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.HomeAssistant.Token = "" },
			wantErr: "access token",
		},
		{
			name:    "missing HA URL",
			mutate:  func(c *Config) { c.HomeAssistant.URL = "" },
			wantErr: "URL cannot be empty",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Server.Host = "" },
			wantErr: "host cannot be empty",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.HomeAssistant.TimeoutSeconds = 0 },
			wantErr: "timeout must be positive",
		},
		{
			name:    "unknown favorites backend",
			mutate:  func(c *Config) { c.Favorites.Backend = "postgres" },
			wantErr: "unknown favorites backend",
		},
		{
			name:    "sqlite backend without path",
			mutate:  func(c *Config) { c.Favorites.Path = "" },
			wantErr: "favorites path",
		},
		{
			name:   "memory backend needs no path",
			mutate: func(c *Config) { c.Favorites.Backend = "memory"; c.Favorites.Path = "" },
		},
		{
			name: "rate limit enabled with bad rpm",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.RequestsPerMin = 0
			},
			wantErr: "requests per minute",
		},
		{
			name: "redis backend without address",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.Backend = "redis"
			},
			wantErr: "redis address",
		},
		{
			name: "redis backend with address",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.Backend = "redis"
				c.RateLimit.RedisAddr = "localhost:6379"
			},
		},
		{
			name:    "api enabled without key",
			mutate:  func(c *Config) { c.API.Enabled = true },
			wantErr: "API key",
		},
		{
			name: "api enabled with key hash",
			mutate: func(c *Config) {
				c.API.Enabled = true
				c.API.APIKeyHash = "$2a$10$abcdefghijklmnopqrstuv"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HA_URL", "http://ha.example.com:8123")
	t.Setenv("HA_TOKEN", testToken)
	t.Setenv("HASS_MCP_PORT", "9090")
	t.Setenv("HASS_MCP_LOG_LEVEL", "debug")
	t.Setenv("HASS_MCP_ENTITY_BLACKLIST", `^sensor\.debug_, ^camera\.`)
	t.Setenv("HASS_MCP_RATELIMIT_ENABLED", "true")
	t.Setenv("HASS_MCP_RATELIMIT_RPM", "60")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://ha.example.com:8123", cfg.HomeAssistant.URL)
	assert.Equal(t, testToken, cfg.HomeAssistant.Token)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{`^sensor\.debug_`, `^camera\.`}, cfg.HomeAssistant.Blacklist)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMin)
}

func TestLoadConfigPrefixedNamesWin(t *testing.T) {
	t.Setenv("HA_URL", "http://short.example.com")
	t.Setenv("HASS_MCP_HA_URL", "http://prefixed.example.com")
	t.Setenv("HA_TOKEN", testToken)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://prefixed.example.com", cfg.HomeAssistant.URL)
}

func TestLoadConfigMissingTokenFails(t *testing.T) {
	t.Setenv("HA_URL", "http://ha.example.com")
	t.Setenv("HA_TOKEN", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token")
}
