// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all server configuration.
type Config struct {
	Port                 int
	DBPath               string
	SessionSecret        string
	SessionTTL           time.Duration
	RateLimitWindow      time.Duration
	RateLimitMaxRequests int
	FrontendURL          string
	LogLevel             string
	JanitorInterval      time.Duration
}

// Load reads .env files (if present) and the process environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is fine; the environment is authoritative.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "./data/sessions.db")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Hour)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("FRONTEND_URL", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JANITOR_INTERVAL", 5*time.Minute)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                 v.GetInt("PORT"),
		DBPath:               v.GetString("DB_PATH"),
		SessionSecret:        v.GetString("SESSION_SECRET"),
		SessionTTL:           v.GetDuration("SESSION_TTL"),
		RateLimitWindow:      v.GetDuration("RATE_LIMIT_WINDOW"),
		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		FrontendURL:          v.GetString("FRONTEND_URL"),
		LogLevel:             strings.ToLower(v.GetString("LOG_LEVEL")),
		JanitorInterval:      v.GetDuration("JANITOR_INTERVAL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.RateLimitWindow <= 0 || c.RateLimitMaxRequests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX_REQUESTS must be positive"))
	}
	if c.JanitorInterval <= 0 {
		errs = append(errs, errors.New("JANITOR_INTERVAL must be positive"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q not one of debug, info, warn, error", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
