// Package config reads the calendar service configuration from the
// environment, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port int    // PORT
	Env  string // ENV: development, staging, production

	DatabasePath string // DATABASE_PATH, the SQLite catalog store
	CatalogPath  string // CATALOG_PATH, optional YAML catalog seeding an empty database

	RedisURL string        // REDIS_URL; empty disables caching
	CacheTTL time.Duration // CACHE_TTL, lifetime of cached year payloads

	APIKey string // API_KEY for the admin endpoints

	LogLevel  string // LOG_LEVEL: debug, info, warn, error
	LogFormat string // LOG_FORMAT: json, text
}

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validEnvs       = []string{EnvDevelopment, EnvStaging, EnvProduction}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
)

// Load reads the configuration, loading .env first when it exists. Values
// already in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var env envReader
	cfg := &Config{
		Port:         env.integer("PORT", 8080),
		Env:          env.lookup("ENV", EnvDevelopment),
		DatabasePath: env.lookup("DATABASE_PATH", "./data/calendar.db"),
		CatalogPath:  env.lookup("CATALOG_PATH", ""),
		RedisURL:     env.lookup("REDIS_URL", ""),
		CacheTTL:     env.duration("CACHE_TTL", 10*time.Minute),
		APIKey:       env.lookup("API_KEY", ""),
		LogLevel:     env.lookup("LOG_LEVEL", "info"),
		LogFormat:    env.lookup("LOG_FORMAT", "text"),
	}

	if err := errors.Join(env.err, cfg.Validate()); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if !slices.Contains(validEnvs, c.Env) {
		errs = append(errs, fmt.Errorf("ENV must be one of %v, got %q", validEnvs, c.Env))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}
	// Admin endpoints stay open in development only
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL))
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of %v, got %q", validLogLevels, c.LogLevel))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of %v, got %q", validLogFormats, c.LogFormat))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// CacheEnabled reports whether a Redis URL is configured.
func (c *Config) CacheEnabled() bool { return c.RedisURL != "" }

// envReader reads variables with defaults. Unset and empty variables take
// the default; unparsable ones are collected in err.
type envReader struct {
	err error
}

func (e *envReader) lookup(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.err = errors.Join(e.err, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.err = errors.Join(e.err, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}
