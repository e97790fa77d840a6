package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// DatabaseConfig holds the database connection string
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"` // sqlite://path or postgres://...
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`    // HMAC signing secret, required
	TokenTTL time.Duration `mapstructure:"token_ttl"` // 0 = tokens never expire
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text
}

// RateLimitConfig holds request rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// Load loads configuration from an optional config file, environment
// variables with the BLOGLIST_ prefix, and defaults
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 3003)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("database.dsn", "sqlite://./data/bloglist.db")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", time.Duration(0))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("ratelimit.requests_per_minute", 100)

	// Bind environment variables with BLOGLIST_ prefix
	v.SetEnvPrefix("BLOGLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if !strings.HasPrefix(c.Database.DSN, "sqlite://") &&
		!strings.HasPrefix(c.Database.DSN, "postgres://") &&
		!strings.HasPrefix(c.Database.DSN, "postgresql://") {
		return fmt.Errorf("database.dsn must use the sqlite:// or postgres:// scheme")
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text")
	}

	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("ratelimit.requests_per_minute must be positive")
	}

	return nil
}

// MaskSecret returns a masked version of the signing secret for logging
func (c *Config) MaskSecret() string {
	if c.Auth.Secret == "" {
		return ""
	}
	return "***"
}
