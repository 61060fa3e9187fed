// Package config loads SDK and fake API configuration from a YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/virtusize/virtusize-go/pkg/endpoint"
)

const (
	defaultTimeout     = 80 * time.Second
	defaultRateBurst   = 1
	defaultSessionFile = "~/.virtusize/session.yaml"
	defaultLogLevel    = "info"
	defaultListenAddr  = ":8090"

	envConfigFile = "VIRTUSIZE_CONFIG"
)

// Config holds configuration values.
type Config struct {
	APIKey      string               `yaml:"apiKey"`
	Environment endpoint.Environment `yaml:"environment"`
	UserID      string               `yaml:"userId"`
	// BaseURL replaces the Virtusize hosts, for example with the fake API.
	BaseURL string `yaml:"baseUrl"`

	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   float64       `yaml:"rateLimit"`
	RateBurst   int           `yaml:"rateBurst"`
	SessionFile string        `yaml:"sessionFile"`

	LogLevel string `yaml:"logLevel"`
	DevMode  bool   `yaml:"devMode"`

	ListenAddr     string `yaml:"listenAddr"`
	MetricsEnabled bool   `yaml:"metricsEnabled"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Environment:    endpoint.Default,
		Timeout:        defaultTimeout,
		RateBurst:      defaultRateBurst,
		SessionFile:    defaultSessionFile,
		LogLevel:       defaultLogLevel,
		ListenAddr:     defaultListenAddr,
		MetricsEnabled: true,
	}
}

// Load reads the file named by VIRTUSIZE_CONFIG, when set, and applies environment overrides.
func Load() (Config, error) {
	base := Defaults()
	if path := strings.TrimSpace(os.Getenv(envConfigFile)); path != "" {
		fromFile, err := LoadFile(path, base)
		if err != nil {
			return Config{}, err
		}
		base = fromFile
	}

	cfg := Config{
		APIKey:         envOrDefault("VIRTUSIZE_API_KEY", base.APIKey),
		Environment:    endpoint.Environment(envOrDefault("VIRTUSIZE_ENV", string(base.Environment))),
		UserID:         envOrDefault("VIRTUSIZE_USER_ID", base.UserID),
		BaseURL:        envOrDefault("VIRTUSIZE_BASE_URL", base.BaseURL),
		Timeout:        envPositiveDuration("VIRTUSIZE_TIMEOUT", base.Timeout),
		RateLimit:      envNonNegativeFloat("VIRTUSIZE_RATE_LIMIT", base.RateLimit),
		RateBurst:      envPositiveInt("VIRTUSIZE_RATE_BURST", base.RateBurst),
		SessionFile:    envOrDefault("VIRTUSIZE_SESSION_FILE", base.SessionFile),
		LogLevel:       envOrDefault("VIRTUSIZE_LOG_LEVEL", base.LogLevel),
		DevMode:        envBool("VIRTUSIZE_DEV_MODE", base.DevMode),
		ListenAddr:     envOrDefault("VIRTUSIZE_LISTEN_ADDR", base.ListenAddr),
		MetricsEnabled: envBool("VIRTUSIZE_METRICS_ENABLED", base.MetricsEnabled),
	}
	return normalize(cfg)
}

// LoadFile reads a YAML file on top of base.
func LoadFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config file %s: %w", path, err)
	}
	return cfg, nil
}

func normalize(cfg Config) (Config, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.UserID = strings.TrimSpace(cfg.UserID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.SessionFile = strings.TrimSpace(cfg.SessionFile)
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	env, err := endpoint.ParseEnvironment(string(cfg.Environment))
	if err != nil {
		return Config{}, fmt.Errorf("invalid VIRTUSIZE_ENV: %w", err)
	}
	cfg.Environment = env

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit < 0 {
		return Config{}, errors.New("invalid VIRTUSIZE_RATE_LIMIT: must not be negative")
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}
	return cfg, nil
}

// RequireAPIKey returns an error when no API key is configured.
func (c Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return errors.New("VIRTUSIZE_API_KEY is required")
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		switch strings.ToLower(v) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		default:
			return defaultVal
		}
	}
	return b
}

func envPositiveInt(key string, defaultVal int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return defaultVal
	}
	return parsed
}

func envNonNegativeFloat(key string, defaultVal float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || parsed < 0 {
		return defaultVal
	}
	return parsed
}

func envPositiveDuration(key string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return defaultVal
	}
	return parsed
}
