package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"API_BASE_URL", "API_BASE_URL_FILE", "PORT", "VERIFICATION_TTL", "HTTP_TIMEOUT",
	"SESSION_COOKIE_NAME", "SESSION_IDLE_TIMEOUT", "SESSION_COOKIE_SECURE",
	"STORE_BACKEND", "REDIS_URL", "REDIS_URL_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		expected    *Config
		errContains string
	}{
		{
			name: "defaults",
			env:  map[string]string{"API_BASE_URL": "https://api.studentpay.example/"},
			expected: &Config{
				APIBaseURL:         "https://api.studentpay.example",
				Port:               "8080",
				VerificationTTL:    5 * time.Minute,
				HTTPTimeout:        10 * time.Second,
				SessionCookieName:  "studentpay_session",
				SessionIdleTimeout: 24 * time.Hour,
				StoreBackend:       StoreMemory,
			},
		},
		{
			name: "custom configuration from environment variables",
			env: map[string]string{
				"API_BASE_URL":          "http://backend:8000",
				"PORT":                  "9999",
				"VERIFICATION_TTL":      "30s",
				"HTTP_TIMEOUT":          "3s",
				"SESSION_COOKIE_NAME":   "sp",
				"SESSION_IDLE_TIMEOUT":  "2h",
				"SESSION_COOKIE_SECURE": "true",
				"STORE_BACKEND":         "Redis",
				"REDIS_URL":             "redis://redis:6379/1",
			},
			expected: &Config{
				APIBaseURL:          "http://backend:8000",
				Port:                "9999",
				VerificationTTL:     30 * time.Second,
				HTTPTimeout:         3 * time.Second,
				SessionCookieName:   "sp",
				SessionIdleTimeout:  2 * time.Hour,
				SessionCookieSecure: true,
				StoreBackend:        StoreRedis,
				RedisURL:            "redis://redis:6379/1",
			},
		},
		{
			name:        "missing base url",
			env:         map[string]string{},
			errContains: "API_BASE_URL cannot be empty",
		},
		{
			name:        "relative base url",
			env:         map[string]string{"API_BASE_URL": "backend:8000"},
			errContains: "absolute http(s) URL",
		},
		{
			name:        "invalid verification TTL format",
			env:         map[string]string{"API_BASE_URL": "http://backend", "VERIFICATION_TTL": "soon"},
			errContains: "invalid VERIFICATION_TTL",
		},
		{
			name:        "non-positive idle timeout",
			env:         map[string]string{"API_BASE_URL": "http://backend", "SESSION_IDLE_TIMEOUT": "0s"},
			errContains: "SESSION_IDLE_TIMEOUT must be positive",
		},
		{
			name:        "invalid secure flag",
			env:         map[string]string{"API_BASE_URL": "http://backend", "SESSION_COOKIE_SECURE": "maybe"},
			errContains: "invalid SESSION_COOKIE_SECURE",
		},
		{
			name:        "redis backend without url",
			env:         map[string]string{"API_BASE_URL": "http://backend", "STORE_BACKEND": "redis"},
			errContains: "REDIS_URL is required",
		},
		{
			name:        "unknown backend",
			env:         map[string]string{"API_BASE_URL": "http://backend", "STORE_BACKEND": "etcd"},
			errContains: "STORE_BACKEND must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestGetEnv_FileIndirection(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "redis_url")
	require.NoError(t, os.WriteFile(path, []byte("redis://:secret@redis:6379/0\n"), 0o600))

	t.Setenv("REDIS_URL", "redis://ignored:6379")
	t.Setenv("REDIS_URL_FILE", path)

	assert.Equal(t, "redis://:secret@redis:6379/0", getEnv("REDIS_URL", ""))
}

func TestGetEnv_MissingFileFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL_FILE", filepath.Join(t.TempDir(), "absent"))
	t.Setenv("REDIS_URL", "redis://redis:6379")

	assert.Equal(t, "redis://redis:6379", getEnv("REDIS_URL", ""))
}
