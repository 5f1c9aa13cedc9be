package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://xkcd.com", cfg.Network.BaseURL)
	assert.Equal(t, "https://imgs.xkcd.com/comics", cfg.Network.ImageBaseURL)
	assert.Equal(t, 30*time.Second, cfg.Network.Timeout)
	assert.Equal(t, time.Second, cfg.Network.SleepTime)
	assert.Equal(t, 0, cfg.Network.MaxRetries)

	assert.Equal(t, filepath.Join(".", "work", "xkcd-fetch"), cfg.Cache.Dir())
	assert.Equal(t, "comic-data.txt", cfg.Cache.DataFile)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Empty(t, cfg.Metrics.Addr)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RED_SPIDER_ROOT", "/srv/red-spider")
	t.Setenv("XKCD_FETCH_BASE_URL", "http://localhost:8080")
	t.Setenv("XKCD_FETCH_SLEEP_TIME", "250ms")
	t.Setenv("XKCD_FETCH_MAX_RETRIES", "2")
	t.Setenv("XKCD_FETCH_LOG_LEVEL", "debug")
	t.Setenv("XKCD_FETCH_METRICS_ADDR", ":9102")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, filepath.Join("/srv/red-spider", "work", "xkcd-fetch"), cfg.Cache.Dir())
	assert.Equal(t, "http://localhost:8080", cfg.Network.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Network.SleepTime)
	assert.Equal(t, 2, cfg.Network.MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9102", cfg.Metrics.Addr)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("XKCD_FETCH_TIMEOUT", "soon")
	t.Setenv("XKCD_FETCH_MAX_RETRIES", "many")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XKCD_FETCH_TIMEOUT")
	assert.Contains(t, err.Error(), "XKCD_FETCH_MAX_RETRIES")
	assert.Equal(t, 30*time.Second, cfg.Network.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{name: "relative base url", modify: func(c *Config) { c.Network.BaseURL = "xkcd.com" }, want: "base URL"},
		{name: "ftp image url", modify: func(c *Config) { c.Network.ImageBaseURL = "ftp://imgs.xkcd.com" }, want: "image base URL"},
		{name: "zero timeout", modify: func(c *Config) { c.Network.Timeout = 0 }, want: "timeout must be positive"},
		{name: "negative sleep", modify: func(c *Config) { c.Network.SleepTime = -time.Second }, want: "sleep time"},
		{name: "negative retries", modify: func(c *Config) { c.Network.MaxRetries = -1 }, want: "max retries"},
		{name: "data file with directory", modify: func(c *Config) { c.Cache.DataFile = "sub/comic-data.txt" }, want: "plain file name"},
		{name: "empty negative cache", modify: func(c *Config) { c.Cache.NotFoundCacheSize = 0 }, want: "not found cache size"},
		{name: "invalid log level", modify: func(c *Config) { c.Logging.Level = "loud" }, want: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network.Timeout = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "log level")
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"sleep-time":   0.5,
		"timeout":      5 * time.Second,
		"max-retries":  3,
		"metrics-addr": "127.0.0.1:9102",
	})

	assert.Equal(t, 500*time.Millisecond, cfg.Network.SleepTime)
	assert.Equal(t, 5*time.Second, cfg.Network.Timeout)
	assert.Equal(t, 3, cfg.Network.MaxRetries)
	assert.Equal(t, "127.0.0.1:9102", cfg.Metrics.Addr)
}

func TestMergeQuietRaisesLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{"quiet": true})
	assert.Equal(t, "error", cfg.Logging.Level)

	cfg = DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{"quiet": true, "log-level": "debug"})
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestMergeZeroSleep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{"sleep-time": 0.0})
	assert.Equal(t, time.Duration(0), cfg.Network.SleepTime)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Network.SleepTime = 3 * time.Second
	cfg.Cache.RootDir = "/data"
	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "3s", doc["network"]["sleep_time"])

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 3*time.Second, loaded.Network.SleepTime)
	assert.Equal(t, "/data", loaded.Cache.RootDir)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: [unterminated"), 0644))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network:
  sleep_time: 4s
  max_retries: 1
logging:
  level: info
`), 0644))

	t.Setenv("XKCD_FETCH_MAX_RETRIES", "2")

	cfg, err := Load(path, map[string]interface{}{"log-level": "debug"})
	require.NoError(t, err)

	assert.Equal(t, 4*time.Second, cfg.Network.SleepTime, "file beats default")
	assert.Equal(t, 2, cfg.Network.MaxRetries, "env beats file")
	assert.Equal(t, "debug", cfg.Logging.Level, "flag beats file")
	assert.Equal(t, 30*time.Second, cfg.Network.Timeout, "default kept")
}

func TestLoadRejectsNegativeSleepFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load("", map[string]interface{}{"sleep-time": -1.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sleep time cannot be negative")
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  timeout: 0s\n"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
