// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads folio configuration from an optional TOML file
// overlaid with FOLIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration.
// Values come from Defaults, then the TOML file (if any), then the environment.
type Config struct {
	DatabaseURL    string `toml:"database_url" env:"FOLIO_DATABASE_URL"`
	DBMaxOpenConns int    `toml:"db_max_open_conns" env:"FOLIO_DB_MAX_OPEN_CONNS"`
	SecretKey      string `toml:"secret_key" env:"FOLIO_SECRET_KEY"`
	ServerHost     string `toml:"server_host" env:"FOLIO_SERVER_HOST"`
	ServerPort     int    `toml:"server_port" env:"FOLIO_SERVER_PORT"`
	Env            string `toml:"env" env:"FOLIO_ENV"`
	LogLevel       string `toml:"log_level" env:"FOLIO_LOG_LEVEL"`
	LogFormat      string `toml:"log_format" env:"FOLIO_LOG_FORMAT"`

	// Response cache
	RedisURL     string        `toml:"redis_url" env:"FOLIO_REDIS_URL"`
	CachePrefix  string        `toml:"cache_prefix" env:"FOLIO_CACHE_PREFIX"`
	CacheTTL     time.Duration `toml:"cache_ttl" env:"FOLIO_CACHE_TTL"`
	CacheMaxSize int           `toml:"cache_max_size" env:"FOLIO_CACHE_MAX_SIZE"`

	// Cache-Control for public list endpoints, in seconds
	PublicMaxAge int `toml:"public_max_age" env:"FOLIO_PUBLIC_MAX_AGE"`
	PublicSWR    int `toml:"public_swr" env:"FOLIO_PUBLIC_SWR"`

	CORSOrigins []string `toml:"cors_origins" env:"FOLIO_CORS_ORIGINS" envSeparator:","`

	// Admin authentication
	AuthCookieName string        `toml:"auth_cookie_name" env:"FOLIO_AUTH_COOKIE_NAME"`
	SessionTTL     time.Duration `toml:"session_ttl" env:"FOLIO_SESSION_TTL"`
	AdminUsername  string        `toml:"admin_username" env:"FOLIO_ADMIN_USERNAME"`
	AdminPassword  string        `toml:"admin_password" env:"FOLIO_ADMIN_PASSWORD"`
	DoSeed         bool          `toml:"do_seed" env:"FOLIO_DO_SEED"`

	// Event log retention; zero disables the cleanup job
	EventRetention  time.Duration `toml:"event_retention" env:"FOLIO_EVENT_RETENTION"`
	CleanupSchedule string        `toml:"cleanup_schedule" env:"FOLIO_CLEANUP_SCHEDULE"`

	// ExposeErrorDetails adds the underlying error text to 500 responses.
	ExposeErrorDetails bool `toml:"expose_error_details" env:"FOLIO_EXPOSE_ERROR_DETAILS"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		DBMaxOpenConns:     25,
		ServerHost:         "localhost",
		ServerPort:         8080,
		Env:                "development",
		LogLevel:           "info",
		LogFormat:          "text",
		CachePrefix:        "folio:",
		CacheTTL:           30 * time.Second,
		CacheMaxSize:       1000,
		PublicMaxAge:       60,
		PublicSWR:          300,
		AuthCookieName:     "admin-auth",
		SessionTTL:         24 * time.Hour,
		AdminUsername:      "admin",
		EventRetention:     30 * 24 * time.Hour,
		CleanupSchedule:    "0 3 * * *",
		ExposeErrorDetails: true,
	}
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSecretKeyLength is the minimum required length for the secret key.
const MinSecretKeyLength = 32

// Load reads the optional TOML file at path (skipped when empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("FOLIO_CONFIG_FILE")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required values and rejects unsafe secrets.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("FOLIO_DATABASE_URL is required")
	}

	if len(c.SecretKey) < MinSecretKeyLength {
		return fmt.Errorf("FOLIO_SECRET_KEY must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSecretKeyLength, len(c.SecretKey))
	}
	for _, weak := range knownWeakSecrets {
		if c.SecretKey == weak {
			return errors.New("FOLIO_SECRET_KEY is a known default value and must not be used")
		}
	}
	if !hasMinimumEntropy(c.SecretKey) {
		slog.Warn("FOLIO_SECRET_KEY has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("FOLIO_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.SessionTTL <= 0 {
		return errors.New("FOLIO_SESSION_TTL must be positive")
	}
	if c.AuthCookieName == "" {
		return errors.New("FOLIO_AUTH_COOKIE_NAME must not be empty")
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// TrustedOriginHosts returns CORSOrigins reduced to host[:port] form.
func (c Config) TrustedOriginHosts() []string {
	hosts := make([]string, 0, len(c.CORSOrigins))
	for _, o := range c.CORSOrigins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		hosts = append(hosts, strings.TrimSuffix(o, "/"))
	}
	return hosts
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
