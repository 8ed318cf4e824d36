package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// StoreMode controls how newly scraped records relate to an existing store file.
type StoreMode string

const (
	// StoreModeMerge keeps existing records and replaces only the keys
	// present in the new batch.
	StoreModeMerge StoreMode = "merge"
	// StoreModeOverwrite discards the existing store entirely.
	StoreModeOverwrite StoreMode = "overwrite"
)

// Config holds all configuration options for the card scraper
type Config struct {
	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Fetch settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Store settings
	Store StoreConfig `yaml:"store" json:"store"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second" json:"requests_per_second"`
	MaxRetries        int `yaml:"max_retries" json:"max_retries"`
}

// FetchConfig holds fetch-specific configuration
type FetchConfig struct {
	Timeout              time.Duration `yaml:"timeout" json:"timeout"`
	CardConcurrency      int           `yaml:"card_concurrency" json:"card_concurrency"`
	ExpansionConcurrency int           `yaml:"expansion_concurrency" json:"expansion_concurrency"`
	BaseURL              string        `yaml:"base_url" json:"base_url"`
	UserAgent            string        `yaml:"user_agent" json:"user_agent"`
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Path string    `yaml:"path" json:"path"`
	Mode StoreMode `yaml:"mode" json:"mode"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			MaxRetries:        3,
		},
		Fetch: FetchConfig{
			Timeout:              30 * time.Second,
			CardConcurrency:      8,
			ExpansionConcurrency: 2,
			BaseURL:              "https://llofficial-cardgame.com/",
			UserAgent:            "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Store: StoreConfig{
			Path: "card_data.json",
			Mode: StoreModeMerge,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Load .env file if present; missing files are fine
	_ = godotenv.Load()

	if rps := os.Getenv("TCGSCRAPER_REQUESTS_PER_SECOND"); rps != "" {
		var val int
		fmt.Sscanf(rps, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerSecond = val
		}
	}
	if retries := os.Getenv("TCGSCRAPER_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val >= 0 {
			c.RateLimit.MaxRetries = val
		}
	}
	if timeout := os.Getenv("TCGSCRAPER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Fetch.Timeout = d
		}
	}
	if concurrent := os.Getenv("TCGSCRAPER_CARD_CONCURRENCY"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Fetch.CardConcurrency = val
		}
	}
	if concurrent := os.Getenv("TCGSCRAPER_EXPANSION_CONCURRENCY"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Fetch.ExpansionConcurrency = val
		}
	}
	if baseURL := os.Getenv("TCGSCRAPER_BASE_URL"); baseURL != "" {
		c.Fetch.BaseURL = baseURL
	}
	if path := os.Getenv("TCGSCRAPER_STORE_PATH"); path != "" {
		c.Store.Path = path
	}
	if mode := os.Getenv("TCGSCRAPER_STORE_MODE"); mode != "" {
		c.Store.Mode = StoreMode(strings.ToLower(mode))
	}
	if logLevel := os.Getenv("TCGSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("TCGSCRAPER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tcgscraper.yaml",
		".tcgscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tcgscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tcgscraper", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Load creates a config from defaults, then file, then environment
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	var errs []error

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests per second must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Fetch.CardConcurrency <= 0 {
		errs = append(errs, errors.New("card concurrency must be positive"))
	}
	if c.Fetch.ExpansionConcurrency <= 0 {
		errs = append(errs, errors.New("expansion concurrency must be positive"))
	}
	if c.Fetch.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}

	if c.Store.Path == "" {
		errs = append(errs, errors.New("store path is required"))
	}
	switch c.Store.Mode {
	case StoreModeMerge, StoreModeOverwrite:
	default:
		errs = append(errs, fmt.Errorf("invalid store mode: %q", c.Store.Mode))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
