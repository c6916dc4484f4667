// Package config provides Viper-based configuration for the studentpay CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete CLI configuration.
type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Verification VerificationConfig `mapstructure:"verification"`
	Store        StoreConfig        `mapstructure:"store"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Output       OutputConfig       `mapstructure:"output"`
}

// APIConfig locates the StudentPay backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// VerificationConfig controls the verification cache.
type VerificationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// StoreConfig locates the credentials file.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// ErrNoBaseURL is returned when a command needs the backend and none is
// configured.
var ErrNoBaseURL = errors.New("api.base_url is not set (use --api-url, STUDENTPAY_API_BASE_URL or .studentpay.yaml)")

// Load reads configuration from the config file, STUDENTPAY_* environment
// variables and the flags bound on v.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".studentpay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studentpay")
	}

	v.SetEnvPrefix("STUDENTPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("verification.ttl", 5*time.Minute)
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("output.colors", true)
}

// DefaultStorePath is where credentials are kept unless configured.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".studentpay", "credentials.json")
	}
	return filepath.Join(home, ".config", "studentpay", "credentials.json")
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL != "" {
		u, err := url.Parse(cfg.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid api.base_url: %q", cfg.API.BaseURL)
		}
	}

	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}

	if cfg.Verification.TTL <= 0 {
		return fmt.Errorf("verification.ttl must be positive")
	}

	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path cannot be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	return nil
}

// RequireBaseURL returns the backend URL or ErrNoBaseURL.
func (c *Config) RequireBaseURL() (string, error) {
	if c.API.BaseURL == "" {
		return "", ErrNoBaseURL
	}
	return c.API.BaseURL, nil
}
