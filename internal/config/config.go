// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Remote CMS
	WPBaseURL string        // base URL of the WordPress REST API, e.g. https://cms.example.com/wp-json/wp/v2
	WPTimeout time.Duration // per-request timeout for CMS calls

	// Local store
	DataDir      string // directory holding the cached document
	StoreBackend string // "json" (default) or "bbolt"

	// Sync behavior
	CacheTTL            time.Duration // staleness threshold for the cached document
	SyncInterval        time.Duration // background runner poll interval
	SyncRetryMax        int           // full-sync retry attempts
	EssentialCategories []int         // fallback category IDs when discovery fails

	// Valkey (optional query-result cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// API rate limiting
	RateLimit  int
	RateWindow time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		WPBaseURL: envOrDefault("WP_BASE_URL", "http://localhost:8081/wp-json/wp/v2"),
		WPTimeout: envDuration("WP_TIMEOUT", 30*time.Second),

		DataDir:      envOrDefault("DATA_DIR", "data"),
		StoreBackend: envOrDefault("STORE_BACKEND", "json"),

		CacheTTL:     envDuration("CACHE_TTL", 5*time.Minute),
		SyncInterval: envDuration("SYNC_INTERVAL", time.Minute),
		SyncRetryMax: envInt("SYNC_RETRY_MAX", 3),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		RateLimit:  envInt("RATE_LIMIT", 120),
		RateWindow: envDuration("RATE_WINDOW", time.Minute),
	}

	cats, err := parseIDList(os.Getenv("ESSENTIAL_CATEGORIES"))
	if err != nil {
		return nil, fmt.Errorf("ESSENTIAL_CATEGORIES: %w", err)
	}
	cfg.EssentialCategories = cats

	switch cfg.StoreBackend {
	case "json", "bbolt":
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be json or bbolt, got %q", cfg.StoreBackend)
	}

	if cfg.Env == "production" {
		if os.Getenv("WP_BASE_URL") == "" {
			return nil, fmt.Errorf("WP_BASE_URL must be set in production")
		}
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasValkey returns true when a Valkey host is configured.
func (c *Config) HasValkey() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration reads a duration environment variable (Go duration syntax,
// e.g. "5m"), returning a fallback if unset or unparseable.
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envInt reads an integer environment variable, returning a fallback if
// unset or unparseable.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// parseIDList parses a comma-separated list of numeric IDs.
func parseIDList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
