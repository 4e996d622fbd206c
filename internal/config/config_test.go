package config

import (
	"strings"
	"testing"
	"time"
)

var configVars = []string{
	"PORT", "ENV", "DATABASE_PATH", "API_KEY",
	"CATALOG_PATH", "REDIS_URL", "CACHE_TTL",
	"LOG_LEVEL", "LOG_FORMAT",
}

// setEnv blanks every config variable for the test, then applies vars.
// Blank values fall back to defaults in Load.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, v := range configVars {
		t.Setenv(v, "")
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, nil)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Port:         8080,
		Env:          EnvDevelopment,
		DatabasePath: "./data/calendar.db",
		CacheTTL:     10 * time.Minute,
		LogLevel:     "info",
		LogFormat:    "text",
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true without REDIS_URL")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	setEnv(t, map[string]string{
		"PORT":          "3000",
		"ENV":           "production",
		"DATABASE_PATH": "/srv/yphilios/calendar.db",
		"API_KEY":       "tower-key",
		"CATALOG_PATH":  "./catalog.yaml",
		"REDIS_URL":     "redis://localhost:6379/0",
		"CACHE_TTL":     "90s",
		"LOG_LEVEL":     "debug",
		"LOG_FORMAT":    "json",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Port:         3000,
		Env:          EnvProduction,
		DatabasePath: "/srv/yphilios/calendar.db",
		CatalogPath:  "./catalog.yaml",
		RedisURL:     "redis://localhost:6379/0",
		CacheTTL:     90 * time.Second,
		APIKey:       "tower-key",
		LogLevel:     "debug",
		LogFormat:    "json",
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
	if !cfg.CacheEnabled() || !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Errorf("CacheEnabled/IsProduction/IsDevelopment = %v/%v/%v",
			cfg.CacheEnabled(), cfg.IsProduction(), cfg.IsDevelopment())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantMsg string
	}{
		{"unparsable ttl", map[string]string{"CACHE_TTL": "soon"}, "CACHE_TTL"},
		{"production without key", map[string]string{"ENV": "production"}, "API_KEY"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
		{"unparsable port", map[string]string{"PORT": "eighty"}, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.vars)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantMsg)
			}
		})
	}
}

// validConfig is a development config that passes Validate.
func validConfig() Config {
	return Config{
		Port:         8080,
		Env:          EnvDevelopment,
		DatabasePath: "./data/test.db",
		CacheTTL:     time.Minute,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"development without key", func(c *Config) {}, false},
		{"staging without key", func(c *Config) { c.Env = EnvStaging }, false},
		{"production with key", func(c *Config) {
			c.Env = EnvProduction
			c.APIKey = "required-in-prod"
			c.LogFormat = "json"
		}, false},
		{"production requires key", func(c *Config) { c.Env = EnvProduction }, true},
		{"port too low", func(c *Config) { c.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"unknown environment", func(c *Config) { c.Env = "invalid" }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_ReportsAll(t *testing.T) {
	cfg := validConfig()
	cfg.Port = -1
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %v, missing %s", err, want)
		}
	}
}
