// Package config loads station settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the station configuration.
type Config struct {
	Addr                string        `yaml:"addr"`
	DirectusURL         string        `yaml:"directus_url"`
	SQLitePath          string        `yaml:"sqlite_path"`
	SessionSecret       string        `yaml:"session_secret"`
	SecureCookies       bool          `yaml:"secure_cookies"`
	SessionTTL          time.Duration `yaml:"session_ttl"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
	ExpiryCheckInterval time.Duration `yaml:"expiry_check_interval"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	LogLevel            string        `yaml:"log_level"`
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads the YAML file at path (skipped when path is empty), then a .env
// file in the working directory if present, then the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	var data []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		data = b
	}
	return Parse(data, os.LookupEnv)
}

// Parse unmarshals YAML bytes, applies environment overrides and defaults,
// and validates the result. A nil lookup ignores the environment.
func Parse(data []byte, lookup LookupFunc) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("APP_ADDR", &c.Addr)
	str("DIRECTUS_URL", &c.DirectusURL)
	str("SQLITE_PATH", &c.SQLitePath)
	str("SESSION_SECRET", &c.SessionSecret)
	str("LOG_LEVEL", &c.LogLevel)
	if v, ok := lookup("SECURE_COOKIES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: SECURE_COOKIES: %w", err)
		}
		c.SecureCookies = b
	}
	for key, dst := range map[string]*time.Duration{
		"SESSION_TTL":           &c.SessionTTL,
		"CACHE_TTL":             &c.CacheTTL,
		"EXPIRY_CHECK_INTERVAL": &c.ExpiryCheckInterval,
		"REQUEST_TIMEOUT":       &c.RequestTimeout,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// applyDefaults fills in unset values.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.DirectusURL == "" {
		c.DirectusURL = "http://localhost:8055"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "baletrack.db"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 3 * time.Hour
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 30 * time.Second
	}
	if c.ExpiryCheckInterval == 0 {
		c.ExpiryCheckInterval = time.Minute
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if u, err := url.Parse(c.DirectusURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("directus_url %q must be an absolute URL", c.DirectusURL))
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		errs = append(errs, "session_secret is required")
	}
	if c.SessionTTL < 0 {
		errs = append(errs, "session_ttl must be positive")
	}
	if c.CacheTTL < 0 {
		errs = append(errs, "cache_ttl must be positive")
	}
	if c.ExpiryCheckInterval < 0 {
		errs = append(errs, "expiry_check_interval must be positive")
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		errs = append(errs, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	return levels[strings.ToLower(c.LogLevel)]
}
