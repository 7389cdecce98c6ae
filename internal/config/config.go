// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the evops runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver    string `env:"EVOPS_DB_DRIVER" envDefault:"sqlite"`
	DBPath      string `env:"EVOPS_DB_PATH" envDefault:"./data/evops.db"`
	DatabaseURL string `env:"EVOPS_DATABASE_URL"` // Postgres DSN, required when DBDriver is postgres
	ServerHost  string `env:"EVOPS_SERVER_HOST" envDefault:"localhost"`
	ServerPort  int    `env:"EVOPS_SERVER_PORT" envDefault:"8080"`
	Env         string `env:"EVOPS_ENV" envDefault:"development"`
	LogLevel    string `env:"EVOPS_LOG_LEVEL" envDefault:"info"`

	// Timezone decides which calendar day a job ID belongs to.
	Timezone string `env:"EVOPS_TIMEZONE" envDefault:"Local"`

	// IssueAttempts bounds how often an identifier is re-derived after the
	// store rejected it as a duplicate.
	IssueAttempts int `env:"EVOPS_ISSUE_ATTEMPTS" envDefault:"3"`

	// Reference data cache
	RedisURL     string `env:"EVOPS_REDIS_URL"`
	CachePrefix  string `env:"EVOPS_CACHE_PREFIX" envDefault:"evops:"`
	CacheTTL     int    `env:"EVOPS_CACHE_TTL" envDefault:"600"` // seconds
	CacheMaxSize int    `env:"EVOPS_CACHE_MAX_SIZE" envDefault:"5000"`

	// APIRateLimit is the number of write requests per minute allowed per client IP (0 disables).
	APIRateLimit int `env:"EVOPS_API_RATE_LIMIT" envDefault:"120"`

	WebhookURLs   []string `env:"EVOPS_WEBHOOK_URLS" envSeparator:","`
	WebhookSecret string   `env:"EVOPS_WEBHOOK_SECRET"`

	// AuditSchedule is the cron expression of the assignment consistency audit (empty disables).
	AuditSchedule string `env:"EVOPS_AUDIT_SCHEDULE" envDefault:"*/15 * * * *"`
	// ActivityRetentionDays prunes activity log entries older than this many days (0 keeps everything).
	ActivityRetentionDays int `env:"EVOPS_ACTIVITY_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"EVOPS_DO_SEED" envDefault:"false"` // Seed reference event types and categories
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

// WebhooksEnabled returns true if at least one webhook endpoint is configured.
func (c Config) WebhooksEnabled() bool {
	return len(c.WebhookURLs) > 0
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// ActivityRetention returns the activity log retention window, zero when pruning is disabled.
func (c Config) ActivityRetention() time.Duration {
	if c.ActivityRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.ActivityRetentionDays) * 24 * time.Hour
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("EVOPS_DATABASE_URL is required when EVOPS_DB_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("EVOPS_DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}

	if c.IssueAttempts < 1 {
		return fmt.Errorf("EVOPS_ISSUE_ATTEMPTS must be at least 1, got %d", c.IssueAttempts)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("EVOPS_TIMEZONE: %w", err)
	}

	return nil
}
