// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinAPITokenLength is the minimum length of the bearer token guarding the HTTP API.
const MinAPITokenLength = 24

// knownWeakTokens contains example tokens that must be rejected in production.
var knownWeakTokens = []string{
	"change-me-to-a-long-random-token",
	"REPLACE_WITH_YOUR_OWN_API_TOKEN",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"LOCSYNC_DB_PATH" envDefault:"./data/localazy-sync.db"`
	ServerHost string `env:"LOCSYNC_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"LOCSYNC_SERVER_PORT" envDefault:"8090"`
	Env        string `env:"LOCSYNC_ENV" envDefault:"development"`
	LogLevel   string `env:"LOCSYNC_LOG_LEVEL" envDefault:"info"`
	APIToken   string `env:"LOCSYNC_API_TOKEN"`

	// Localazy API
	LocalazyAPIURL  string        `env:"LOCSYNC_LOCALAZY_API_URL" envDefault:"https://api.localazy.com"`
	LocalazyTimeout time.Duration `env:"LOCSYNC_LOCALAZY_TIMEOUT" envDefault:"30s"`

	// Request throttling against the Localazy API
	ThrottlePerSecond int           `env:"LOCSYNC_THROTTLE_PER_SECOND" envDefault:"10"`
	ThrottlePerMinute int           `env:"LOCSYNC_THROTTLE_PER_MINUTE" envDefault:"100"`
	ThrottleQuantum   time.Duration `env:"LOCSYNC_THROTTLE_QUANTUM" envDefault:"50ms"`

	// Pacing between batch jobs
	ExportDelay      time.Duration `env:"LOCSYNC_EXPORT_DELAY" envDefault:"150ms"`
	CollectionDelay  time.Duration `env:"LOCSYNC_COLLECTION_DELAY" envDefault:"50ms"`
	DeprecationDelay time.Duration `env:"LOCSYNC_DEPRECATION_DELAY" envDefault:"100ms"`
	ChunkSize        int           `env:"LOCSYNC_CHUNK_SIZE" envDefault:"1000"`

	// Cache configuration
	RedisURL     string `env:"LOCSYNC_REDIS_URL"`                          // Optional Redis URL for shared caching
	CachePrefix  string `env:"LOCSYNC_CACHE_PREFIX" envDefault:"locsync:"` // Redis key prefix
	CacheTTL     int    `env:"LOCSYNC_CACHE_TTL" envDefault:"300"`         // Default cache TTL in seconds
	CacheMaxSize int    `env:"LOCSYNC_CACHE_MAX_SIZE" envDefault:"1000"`   // Max memory cache entries

	// Scheduled synchronization (cron expressions, empty disables)
	ImportSchedule string `env:"LOCSYNC_IMPORT_SCHEDULE"`
	ExportSchedule string `env:"LOCSYNC_EXPORT_SCHEDULE"`

	// Requests per second allowed per client on the HTTP API
	APIRateLimit float64 `env:"LOCSYNC_API_RATE_LIMIT" envDefault:"5"`

	// Localazy organization payment statuses that disable synchronization
	BlockedPaymentStatuses []string `env:"LOCSYNC_BLOCKED_PAYMENT_STATUSES" envSeparator:"," envDefault:"suspended,unpaid"`

	// Strip unsafe HTML from translations before writing them back
	SanitizeImportedHTML bool `env:"LOCSYNC_SANITIZE_IMPORTED_HTML" envDefault:"true"`

	// Store free-standing translation strings in the settings blob
	LegacyTranslationStrings bool `env:"LOCSYNC_LEGACY_TRANSLATION_STRINGS" envDefault:"false"`
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

// CacheTTLDuration returns the configured cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ThrottlePerSecond <= 0 || cfg.ThrottlePerMinute <= 0 {
		return nil, fmt.Errorf("throttle limits must be positive, got %d/s and %d/min",
			cfg.ThrottlePerSecond, cfg.ThrottlePerMinute)
	}
	if cfg.ThrottlePerSecond > cfg.ThrottlePerMinute {
		return nil, fmt.Errorf("LOCSYNC_THROTTLE_PER_SECOND (%d) exceeds LOCSYNC_THROTTLE_PER_MINUTE (%d)",
			cfg.ThrottlePerSecond, cfg.ThrottlePerMinute)
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("LOCSYNC_CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}

	if cfg.IsDevelopment() {
		if cfg.APIToken == "" {
			slog.Warn("LOCSYNC_API_TOKEN is not set; the HTTP API is unauthenticated")
		}
		return cfg, nil
	}

	if len(cfg.APIToken) < MinAPITokenLength {
		return nil, fmt.Errorf("LOCSYNC_API_TOKEN must be at least %d bytes long outside development, got %d bytes; "+
			"generate one with: openssl rand -base64 32",
			MinAPITokenLength, len(cfg.APIToken))
	}
	for _, weak := range knownWeakTokens {
		if cfg.APIToken == weak {
			return nil, fmt.Errorf("LOCSYNC_API_TOKEN is a known example value and must not be used")
		}
	}
	if !hasMinimumEntropy(cfg.APIToken) {
		slog.Warn("LOCSYNC_API_TOKEN has low character diversity; " +
			"consider generating a random token with: openssl rand -base64 32")
	}

	return cfg, nil
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
