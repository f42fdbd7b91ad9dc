package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything ledgerview reads at startup.
type Config struct {
	APIURL         string
	APIToken       string
	LogFile        string
	LogLevel       string
	MetricsAddr    string
	RequestTimeout time.Duration
	AttemptTimeout time.Duration
	Retry          RetryConfig
	Connectivity   ConnectivityConfig
}

// RetryConfig tunes the fetch controller's retry policy.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64
}

// ConnectivityConfig tunes the reachability prober.
type ConnectivityConfig struct {
	ProbeInterval    time.Duration
	FailureThreshold int
}

const (
	defaultConfigPath     = "~/.config/ledgerview/config.toml"
	defaultEnvFile        = ".env"
	defaultAPIURL         = "http://127.0.0.1:8080"
	defaultLogFile        = "~/.local/state/ledgerview/ledgerview.log"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultMaxRetries     = 3
	defaultBaseDelay      = time.Second
	defaultMaxDelay       = 10 * time.Second
	defaultProbeInterval  = 5 * time.Second
	defaultFailureLimit   = 2
)

// Environment variables that override the config file.
const (
	EnvAPIURL      = "LEDGERVIEW_API_URL"
	EnvAPIToken    = "LEDGERVIEW_API_TOKEN"
	EnvLogLevel    = "LEDGERVIEW_LOG_LEVEL"
	EnvMetricsAddr = "LEDGERVIEW_METRICS_ADDR"
)

type rawConfig struct {
	APIURL           string `toml:"api_url"`
	APIToken         string `toml:"api_token"`
	LogFile          string `toml:"log_file"`
	LogLevel         string `toml:"log_level"`
	MetricsAddr      string `toml:"metrics_addr"`
	RequestTimeoutMS int    `toml:"request_timeout_ms"`
	AttemptTimeoutMS int    `toml:"attempt_timeout_ms"`
	Retry            struct {
		MaxRetries  *int    `toml:"max_retries"`
		BaseDelayMS int     `toml:"base_delay_ms"`
		MaxDelayMS  int     `toml:"max_delay_ms"`
		Jitter      float64 `toml:"jitter"`
	} `toml:"retry"`
	Connectivity struct {
		ProbeIntervalMS  int `toml:"probe_interval_ms"`
		FailureThreshold int `toml:"failure_threshold"`
	} `toml:"connectivity"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		Retry: RetryConfig{
			MaxRetries: defaultMaxRetries,
			BaseDelay:  defaultBaseDelay,
			MaxDelay:   defaultMaxDelay,
		},
		Connectivity: ConnectivityConfig{
			ProbeInterval:    defaultProbeInterval,
			FailureThreshold: defaultFailureLimit,
		},
	}
}

// Load reads the config at path (or the default path) and applies overrides
// from ./.env and the process environment.
func Load(path string) (Config, error) {
	return LoadFiles(path, defaultEnvFile)
}

// LoadFiles is Load with an explicit env file. Missing files are not errors.
func LoadFiles(path, envFile string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		var raw rawConfig
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.apply(raw)
	}

	env, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return env[key]
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the fetch controller cannot honor.
func (c Config) Validate() error {
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be between 0 and 1")
	}
	if c.Retry.BaseDelay > c.Retry.MaxDelay {
		return fmt.Errorf("retry.base_delay_ms exceeds retry.max_delay_ms")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

func (c *Config) apply(raw rawConfig) {
	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	c.APIToken = strings.TrimSpace(raw.APIToken)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if raw.RequestTimeoutMS > 0 {
		c.RequestTimeout = millis(raw.RequestTimeoutMS)
	}
	if raw.AttemptTimeoutMS > 0 {
		c.AttemptTimeout = millis(raw.AttemptTimeoutMS)
	}

	if raw.Retry.MaxRetries != nil {
		c.Retry.MaxRetries = *raw.Retry.MaxRetries
	}
	if raw.Retry.BaseDelayMS > 0 {
		c.Retry.BaseDelay = millis(raw.Retry.BaseDelayMS)
	}
	if raw.Retry.MaxDelayMS > 0 {
		c.Retry.MaxDelay = millis(raw.Retry.MaxDelayMS)
	}
	c.Retry.Jitter = raw.Retry.Jitter

	if raw.Connectivity.ProbeIntervalMS > 0 {
		c.Connectivity.ProbeInterval = millis(raw.Connectivity.ProbeIntervalMS)
	}
	if raw.Connectivity.FailureThreshold > 0 {
		c.Connectivity.FailureThreshold = raw.Connectivity.FailureThreshold
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(getenv(EnvAPIToken)); v != "" {
		c.APIToken = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvMetricsAddr)); v != "" {
		c.MetricsAddr = v
	}
}

func readEnvFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return env, nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
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

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
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
