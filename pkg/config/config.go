package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the comic fetcher
type Config struct {
	// Origin site and request pacing
	Network NetworkConfig `yaml:"network" json:"network"`

	// Cache directory layout
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// NetworkConfig holds transport and pacing configuration
type NetworkConfig struct {
	BaseURL      string        `yaml:"base_url" json:"base_url"`
	ImageBaseURL string        `yaml:"image_base_url" json:"image_base_url"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	SleepTime    time.Duration `yaml:"sleep_time" json:"sleep_time"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay   time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// CacheConfig holds the location of the record file and images.
// The cache directory is {root_dir}/{work_dir}/{app_dir}.
type CacheConfig struct {
	RootDir           string `yaml:"root_dir" json:"root_dir"`
	WorkDir           string `yaml:"work_dir" json:"work_dir"`
	AppDir            string `yaml:"app_dir" json:"app_dir"`
	DataFile          string `yaml:"data_file" json:"data_file"`
	NotFoundCacheSize int    `yaml:"not_found_cache_size" json:"not_found_cache_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds the metrics listener address. Empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Dir returns the cache directory.
func (c CacheConfig) Dir() string {
	return filepath.Join(c.RootDir, c.WorkDir, c.AppDir)
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			BaseURL:      "https://xkcd.com",
			ImageBaseURL: "https://imgs.xkcd.com/comics",
			UserAgent:    "xkcd-fetch/1.0 (+https://xkcd.com/license.html)",
			Timeout:      30 * time.Second,
			SleepTime:    time.Second,
			MaxRetries:   0,
			RetryDelay:   2 * time.Second,
		},
		Cache: CacheConfig{
			RootDir:           ".",
			WorkDir:           "work",
			AppDir:            "xkcd-fetch",
			DataFile:          "comic-data.txt",
			NotFoundCacheSize: 128,
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if root := os.Getenv("RED_SPIDER_ROOT"); root != "" {
		c.Cache.RootDir = root
	}
	if baseURL := os.Getenv("XKCD_FETCH_BASE_URL"); baseURL != "" {
		c.Network.BaseURL = baseURL
	}
	if imageBaseURL := os.Getenv("XKCD_FETCH_IMAGE_BASE_URL"); imageBaseURL != "" {
		c.Network.ImageBaseURL = imageBaseURL
	}
	if userAgent := os.Getenv("XKCD_FETCH_USER_AGENT"); userAgent != "" {
		c.Network.UserAgent = userAgent
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"XKCD_FETCH_TIMEOUT", &c.Network.Timeout},
		{"XKCD_FETCH_SLEEP_TIME", &c.Network.SleepTime},
		{"XKCD_FETCH_RETRY_DELAY", &c.Network.RetryDelay},
	}
	for _, d := range durations {
		v := os.Getenv(d.name)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		*d.dst = parsed
	}

	if retries := os.Getenv("XKCD_FETCH_MAX_RETRIES"); retries != "" {
		val, err := strconv.Atoi(retries)
		if err != nil {
			errs = append(errs, fmt.Errorf("XKCD_FETCH_MAX_RETRIES: %w", err))
		} else {
			c.Network.MaxRetries = val
		}
	}

	if logLevel := os.Getenv("XKCD_FETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("XKCD_FETCH_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
	if addr := os.Getenv("XKCD_FETCH_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}

	return errors.Join(errs...)
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
		".xkcd-fetch.yaml",
		".xkcd-fetch.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".config", "xkcd-fetch", "config.yaml"),
			filepath.Join(home, ".config", "xkcd-fetch", "config.yml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{
		"base URL":       c.Network.BaseURL,
		"image base URL": c.Network.ImageBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw))
		}
	}
	if c.Network.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Network.SleepTime < 0 {
		errs = append(errs, errors.New("sleep time cannot be negative"))
	}
	if c.Network.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Network.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}

	if c.Cache.RootDir == "" {
		errs = append(errs, errors.New("cache root directory is required"))
	}
	if c.Cache.AppDir == "" {
		errs = append(errs, errors.New("cache app directory is required"))
	}
	if c.Cache.DataFile == "" || strings.ContainsRune(c.Cache.DataFile, filepath.Separator) || strings.Contains(c.Cache.DataFile, "/") {
		errs = append(errs, fmt.Errorf("data file must be a plain file name, got %q", c.Cache.DataFile))
	}
	if c.Cache.NotFoundCacheSize <= 0 {
		errs = append(errs, errors.New("not found cache size must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should be present in the map.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if sleep, ok := flags["sleep-time"].(float64); ok {
		c.Network.SleepTime = time.Duration(sleep * float64(time.Second))
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Network.Timeout = timeout
	}
	if retries, ok := flags["max-retries"].(int); ok {
		c.Network.MaxRetries = retries
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if addr, ok := flags["metrics-addr"].(string); ok && addr != "" {
		c.Metrics.Addr = addr
	}
	if quiet, ok := flags["quiet"].(bool); ok && quiet {
		if _, explicit := flags["log-level"]; !explicit {
			c.Logging.Level = "error"
		}
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".xkcd-fetch.env"))
	}

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
