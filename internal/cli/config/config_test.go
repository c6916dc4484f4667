package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STUDENTPAY_API_BASE_URL", "STUDENTPAY_API_TIMEOUT", "STUDENTPAY_VERIFICATION_TTL",
		"STUDENTPAY_STORE_PATH", "STUDENTPAY_LOGGING_LEVEL", "STUDENTPAY_OUTPUT_COLORS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")

	require.NoError(t, err)
	assert.Empty(t, cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Verification.TTL)
	assert.Equal(t, DefaultStorePath(), cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Output.Colors)

	_, err = cfg.RequireBaseURL()
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "studentpay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://api.studentpay.example/
  timeout: 3s
verification:
  ttl: 1m
store:
  path: /tmp/sp/credentials.json
logging:
  level: debug
output:
  colors: false
`), 0o600))

	cfg, err := Load(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, "https://api.studentpay.example", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Minute, cfg.Verification.TTL)
	assert.Equal(t, "/tmp/sp/credentials.json", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Output.Colors)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("STUDENTPAY_API_BASE_URL", "http://localhost:8000")
	t.Setenv("STUDENTPAY_VERIFICATION_TTL", "30s")

	cfg, err := Load(viper.New(), "")

	require.NoError(t, err)
	base, err := cfg.RequireBaseURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", base)
	assert.Equal(t, 30*time.Second, cfg.Verification.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"relative url", map[string]string{"STUDENTPAY_API_BASE_URL": "localhost:8000"}, "invalid api.base_url"},
		{"bad level", map[string]string{"STUDENTPAY_LOGGING_LEVEL": "trace"}, "invalid logging level"},
		{"zero ttl", map[string]string{"STUDENTPAY_VERIFICATION_TTL": "0s"}, "verification.ttl must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(viper.New(), "")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
