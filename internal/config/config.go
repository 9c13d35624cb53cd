package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/keybot/keybot/internal/api"
)

// Config holds everything the KeyBot CLI needs to reach the API.
type Config struct {
	Origin      string
	APIBase     string
	Timeout     time.Duration
	LogLevel    string
	Environment string
	TokenPath   string
	LogPath     string
	RateLimit   float64
	RateBurst   int
	Theme       string
}

const (
	defaultConfigPath  = "~/.config/keybot/config.toml"
	defaultTokenPath   = "~/.config/keybot/credentials.toml"
	defaultLogPath     = "~/.local/state/keybot/keybot.log"
	defaultLogLevel    = "info"
	defaultEnvironment = "prod"
	defaultRateBurst   = 5
	defaultTheme       = "Nightfox"
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"staging": true,
	"prod":    true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// fileConfig is the on-disk TOML layout.
type fileConfig struct {
	Origin      string  `toml:"origin"`
	APIBase     string  `toml:"api_base"`
	Timeout     string  `toml:"timeout"`
	LogLevel    string  `toml:"log_level"`
	Environment string  `toml:"environment"`
	TokenPath   string  `toml:"token_path"`
	LogPath     string  `toml:"log_path"`
	RateLimit   float64 `toml:"rate_limit"`
	RateBurst   int     `toml:"rate_burst"`
	Theme       string  `toml:"theme"`
}

// envConfig lists the environment overrides. Unset variables stay nil.
type envConfig struct {
	Origin      *string        `env:"KEYBOT_ORIGIN"`
	APIBase     *string        `env:"KEYBOT_API_BASE"`
	Timeout     *time.Duration `env:"KEYBOT_TIMEOUT"`
	LogLevel    *string        `env:"KEYBOT_LOG_LEVEL"`
	Environment *string        `env:"KEYBOT_ENV"`
	TokenPath   *string        `env:"KEYBOT_TOKEN_PATH"`
	LogPath     *string        `env:"KEYBOT_LOG_PATH"`
	RateLimit   *float64       `env:"KEYBOT_RATE_LIMIT"`
	RateBurst   *int           `env:"KEYBOT_RATE_BURST"`
	Theme       *string        `env:"KEYBOT_THEME"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Origin:      api.DefaultOrigin,
		APIBase:     api.DefaultAPIBase,
		Timeout:     api.DefaultTimeout,
		LogLevel:    defaultLogLevel,
		Environment: defaultEnvironment,
		TokenPath:   mustExpand(defaultTokenPath),
		LogPath:     mustExpand(defaultLogPath),
		RateBurst:   defaultRateBurst,
		Theme:       defaultTheme,
	}
}

// Load reads the TOML config at path (or the default location), applies
// KEYBOT_* environment overrides and validates the result. A missing file is
// not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.applyFile(resolved); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.Origin, raw.Origin)
	setString(&c.APIBase, raw.APIBase)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.Environment, raw.Environment)
	setString(&c.TokenPath, raw.TokenPath)
	setString(&c.LogPath, raw.LogPath)
	setString(&c.Theme, raw.Theme)
	if t := strings.TrimSpace(raw.Timeout); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("parse config: timeout: %w", err)
		}
		c.Timeout = d
	}
	if raw.RateLimit != 0 {
		c.RateLimit = raw.RateLimit
	}
	if raw.RateBurst != 0 {
		c.RateBurst = raw.RateBurst
	}
	return nil
}

func (c *Config) applyEnv() error {
	var e envConfig
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}
	if e.Origin != nil {
		setString(&c.Origin, *e.Origin)
	}
	if e.APIBase != nil {
		setString(&c.APIBase, *e.APIBase)
	}
	if e.LogLevel != nil {
		setString(&c.LogLevel, *e.LogLevel)
	}
	if e.Environment != nil {
		setString(&c.Environment, *e.Environment)
	}
	if e.TokenPath != nil {
		setString(&c.TokenPath, *e.TokenPath)
	}
	if e.LogPath != nil {
		setString(&c.LogPath, *e.LogPath)
	}
	if e.Theme != nil {
		setString(&c.Theme, *e.Theme)
	}
	if e.Timeout != nil {
		c.Timeout = *e.Timeout
	}
	if e.RateLimit != nil {
		c.RateLimit = *e.RateLimit
	}
	if e.RateBurst != nil {
		c.RateBurst = *e.RateBurst
	}
	return nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Environment = strings.ToLower(c.Environment)
	c.TokenPath = mustExpand(c.TokenPath)
	c.LogPath = mustExpand(c.LogPath)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", c.Environment)
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level '%s'. Valid levels: debug, info, warn, error", c.LogLevel)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1, got %d", c.RateBurst)
	}
	if strings.TrimSpace(c.TokenPath) == "" {
		return fmt.Errorf("token path cannot be empty")
	}
	if _, err := c.Hosts(); err != nil {
		return err
	}
	return nil
}

// Hosts derives the API client's primary and fallback hosts.
func (c Config) Hosts() (api.Hosts, error) {
	return api.ParseHosts(c.Origin, c.APIBase)
}

// IsDev reports whether the CLI runs in a development environment.
func (c Config) IsDev() bool {
	return c.Environment == "dev" || c.Environment == "test"
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
