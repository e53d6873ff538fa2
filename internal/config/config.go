// Package config loads server configuration from defaults, an
// optional .env file, and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `json:"server"`
	HomeAssistant HomeAssistantConfig `json:"home_assistant"`
	Favorites     FavoritesConfig     `json:"favorites"`
	RateLimit     RateLimitConfig     `json:"rate_limit"`
	API           APIConfig           `json:"api"`
	Logging       LoggingConfig       `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds"`

	// StartupDelayMS delays startup so a supervisor can attach, used
	// in container deployments.
	StartupDelayMS int `json:"startup_delay_ms"`
}

// HomeAssistantConfig represents the upstream Home Assistant connection
type HomeAssistantConfig struct {
	URL            string   `json:"url"`
	Token          string   `json:"-"` // Never serialize the access token
	TimeoutSeconds int      `json:"timeout_seconds"`
	Whitelist      []string `json:"whitelist,omitempty"`
	Blacklist      []string `json:"blacklist,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (c HomeAssistantConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FavoritesConfig represents favorites persistence configuration
type FavoritesConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool   `json:"enabled"`
	RequestsPerMin int    `json:"requests_per_min"`
	Backend        string `json:"backend"` // "local" or "redis"
	RedisAddr      string `json:"redis_addr,omitempty"`
}

// APIConfig represents the REST API surface configuration
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"-"` // Never serialize the API key

	// APIKeyHash is the bcrypt hash checked by the auth middleware.
	// When set it takes precedence over APIKey.
	APIKeyHash string `json:"-"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "localhost",
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		HomeAssistant: HomeAssistantConfig{
			URL:            "http://localhost:8123",
			TimeoutSeconds: 10,
		},
		Favorites: FavoritesConfig{
			Backend: "sqlite",
			Path:    "./data/favorites.db",
		},
		RateLimit: RateLimitConfig{
			Enabled:        false,
			RequestsPerMin: 120,
			Backend:        "local",
		},
		API: APIConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := DefaultConfig()
	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	loadServerConfig(config)
	loadHomeAssistantConfig(config)
	loadFavoritesConfig(config)
	loadRateLimitConfig(config)
	loadAPIConfig(config)
	loadLoggingConfig(config)
}

// loadServerConfig loads server configuration from environment
func loadServerConfig(config *Config) {
	if port := os.Getenv("HASS_MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("HASS_MCP_HOST"); host != "" {
		config.Server.Host = host
	}
	if readTimeout := os.Getenv("HASS_MCP_READ_TIMEOUT_SECONDS"); readTimeout != "" {
		if rt, err := strconv.Atoi(readTimeout); err == nil {
			config.Server.ReadTimeout = rt
		}
	}
	if writeTimeout := os.Getenv("HASS_MCP_WRITE_TIMEOUT_SECONDS"); writeTimeout != "" {
		if wt, err := strconv.Atoi(writeTimeout); err == nil {
			config.Server.WriteTimeout = wt
		}
	}
	if delay := os.Getenv("HASS_MCP_STARTUP_DELAY_MS"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			config.Server.StartupDelayMS = d
		}
	}
}

// loadHomeAssistantConfig loads the upstream connection from
// environment. The short HA_URL / HA_TOKEN names match what Home
// Assistant add-ons conventionally use; the prefixed names win when
// both are set.
func loadHomeAssistantConfig(config *Config) {
	if url := os.Getenv("HASS_MCP_HA_URL"); url != "" {
		config.HomeAssistant.URL = url
	} else if url := os.Getenv("HA_URL"); url != "" {
		config.HomeAssistant.URL = url
	}

	if token := os.Getenv("HASS_MCP_HA_TOKEN"); token != "" {
		config.HomeAssistant.Token = token
	} else if token := os.Getenv("HA_TOKEN"); token != "" {
		config.HomeAssistant.Token = token
	}

	if timeout := os.Getenv("HASS_MCP_HA_TIMEOUT_SECONDS"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.HomeAssistant.TimeoutSeconds = t
		}
	}
	if whitelist := os.Getenv("HASS_MCP_ENTITY_WHITELIST"); whitelist != "" {
		config.HomeAssistant.Whitelist = splitPatterns(whitelist)
	}
	if blacklist := os.Getenv("HASS_MCP_ENTITY_BLACKLIST"); blacklist != "" {
		config.HomeAssistant.Blacklist = splitPatterns(blacklist)
	}
}

// splitPatterns splits a comma-separated pattern list, dropping blanks.
func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadFavoritesConfig loads favorites persistence from environment
func loadFavoritesConfig(config *Config) {
	if backend := os.Getenv("HASS_MCP_FAVORITES_BACKEND"); backend != "" {
		config.Favorites.Backend = backend
	}
	if path := os.Getenv("HASS_MCP_FAVORITES_PATH"); path != "" {
		config.Favorites.Path = path
	}
}

// loadRateLimitConfig loads rate limiting from environment
func loadRateLimitConfig(config *Config) {
	if enabled := os.Getenv("HASS_MCP_RATELIMIT_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.RateLimit.Enabled = e
		}
	}
	if rpm := os.Getenv("HASS_MCP_RATELIMIT_RPM"); rpm != "" {
		if r, err := strconv.Atoi(rpm); err == nil {
			config.RateLimit.RequestsPerMin = r
		}
	}
	if backend := os.Getenv("HASS_MCP_RATELIMIT_BACKEND"); backend != "" {
		config.RateLimit.Backend = backend
	}
	if addr := os.Getenv("HASS_MCP_REDIS_ADDR"); addr != "" {
		config.RateLimit.RedisAddr = addr
	}
}

// loadAPIConfig loads the REST API surface from environment
func loadAPIConfig(config *Config) {
	if enabled := os.Getenv("HASS_MCP_API_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.API.Enabled = e
		}
	}
	if key := os.Getenv("HASS_MCP_API_KEY"); key != "" {
		config.API.APIKey = key
	}
	if hash := os.Getenv("HASS_MCP_API_KEY_HASH"); hash != "" {
		config.API.APIKeyHash = hash
	}
}

// loadLoggingConfig loads logging configuration from environment
func loadLoggingConfig(config *Config) {
	if level := os.Getenv("HASS_MCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("HASS_MCP_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if c.HomeAssistant.URL == "" {
		return fmt.Errorf("home assistant URL cannot be empty")
	}
	if c.HomeAssistant.Token == "" {
		return fmt.Errorf("home assistant access token is required (set HA_TOKEN)")
	}
	if c.HomeAssistant.TimeoutSeconds <= 0 {
		return fmt.Errorf("home assistant timeout must be positive")
	}

	switch c.Favorites.Backend {
	case "sqlite":
		if c.Favorites.Path == "" {
			return fmt.Errorf("favorites path cannot be empty with the sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown favorites backend %q", c.Favorites.Backend)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMin <= 0 {
			return fmt.Errorf("rate limit requests per minute must be positive")
		}
		switch c.RateLimit.Backend {
		case "local":
		case "redis":
			if c.RateLimit.RedisAddr == "" {
				return fmt.Errorf("redis address is required with the redis rate limit backend")
			}
		default:
			return fmt.Errorf("unknown rate limit backend %q", c.RateLimit.Backend)
		}
	}

	if c.API.Enabled && c.API.APIKey == "" && c.API.APIKeyHash == "" {
		return fmt.Errorf("an API key (or key hash) is required when the REST API is enabled")
	}

	return nil
}
