package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends for visitor credentials.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds the gateway configuration.
type Config struct {
	APIBaseURL          string        // StudentPay backend base URL
	Port                string        // Service port
	VerificationTTL     time.Duration // How long a verification answer is trusted
	HTTPTimeout         time.Duration // Timeout of one backend call
	SessionCookieName   string        // Cookie carrying the visitor id
	SessionIdleTimeout  time.Duration // Idle visitors are evicted after this
	SessionCookieSecure bool          // Mark the visitor cookie Secure
	StoreBackend        string        // memory or redis
	RedisURL            string        // Required for the redis backend
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	config := &Config{
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		Port:               getEnv("PORT", "8080"),
		VerificationTTL:    5 * time.Minute,
		HTTPTimeout:        10 * time.Second,
		SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "studentpay_session"),
		SessionIdleTimeout: 24 * time.Hour,
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		RedisURL:           getEnv("REDIS_URL", ""),
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"VERIFICATION_TTL", &config.VerificationTTL},
		{"HTTP_TIMEOUT", &config.HTTPTimeout},
		{"SESSION_IDLE_TIMEOUT", &config.SessionIdleTimeout},
	}
	for _, d := range durations {
		raw := os.Getenv(d.key)
		if raw == "" {
			continue
		}
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s format: %w", d.key, err)
		}
		*d.target = duration
	}

	if raw := os.Getenv("SESSION_COOKIE_SECURE"); raw != "" {
		secure, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_COOKIE_SECURE value: %w", err)
		}
		config.SessionCookieSecure = secure
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.VerificationTTL <= 0 {
		return fmt.Errorf("VERIFICATION_TTL must be positive")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}

	if c.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME cannot be empty")
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMemory, StoreRedis, c.StoreBackend)
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value.
// KEY_FILE takes precedence and names a file holding the value.
func getEnv(key, fallback string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
