// Package config loads the dashboard's configuration: defaults, then an
// optional YAML file, then DROUGHTWATCH_* environment overrides, in
// that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/droughtwatch/droughtwatch/internal/engine/cache"
	"github.com/droughtwatch/droughtwatch/internal/logging"
)

// Environment variables the config layer honors on top of the cache
// package's DROUGHTWATCH_CACHE_* and DROUGHTWATCH_REDIS_URL ones.
const (
	EnvConfigPath = "DROUGHTWATCH_CONFIG"
	EnvServerURL  = "DROUGHTWATCH_SERVER_URL"
	EnvDataset    = "DROUGHTWATCH_DATASET"
	EnvIndex      = "DROUGHTWATCH_INDEX"
	EnvLogLevel   = "DROUGHTWATCH_LOG_LEVEL"
	EnvLogFormat  = "DROUGHTWATCH_LOG_FORMAT"
)

// Defaults for everything the YAML file may omit.
const (
	DefaultServerURL      = "http://127.0.0.1:8000"
	DefaultTimeoutSeconds = 15
	DefaultDebounceMS     = 120
	DefaultLayerLimit     = 2000
)

// Config is the full configuration tree.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Map     MapConfig     `yaml:"map"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig locates the drought API.
type ServerConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// MapConfig selects the initial view and the engine's pacing.
type MapConfig struct {
	Dataset    string `yaml:"dataset"`
	Index      string `yaml:"index"`
	DebounceMS int    `yaml:"debounce_ms"`
	LayerLimit int    `yaml:"layer_limit"`
}

// CacheConfig tunes the response caches. An empty RedisURL keeps the
// caches in-process.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxEntries int    `yaml:"max_entries"`
	RedisURL   string `yaml:"redis_url"`
}

// LoggingConfig selects log level, format and an optional file.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            DefaultServerURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Map: MapConfig{
			DebounceMS: DefaultDebounceMS,
			LayerLimit: DefaultLayerLimit,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: cache.DefaultTTLSeconds,
			MaxEntries: cache.DefaultMaxEntries,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath is where Load looks when no path is given:
// $DROUGHTWATCH_CONFIG, else ~/.droughtwatch/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".droughtwatch", "config.yaml")
}

// Load builds the effective configuration. A missing file is fine and
// yields defaults plus environment overrides; a present but malformed
// file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := ShallowMergeYAML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays DROUGHTWATCH_* variables onto the loaded values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServerURL); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv(EnvDataset); v != "" {
		c.Map.Dataset = v
	}
	if v := os.Getenv(EnvIndex); v != "" {
		c.Map.Index = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if os.Getenv(cache.EnvTTLSeconds) != "" {
		c.Cache.TTLSeconds = cache.GetTTLFromEnv()
	}
	if os.Getenv(cache.EnvCacheEnabled) != "" {
		c.Cache.Enabled = cache.GetCacheEnabledFromEnv()
	}
	if os.Getenv(cache.EnvMaxEntries) != "" {
		c.Cache.MaxEntries = cache.GetMaxEntriesFromEnv()
	}
	if v := cache.GetRedisURLFromEnv(); v != "" {
		c.Cache.RedisURL = v
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url must not be empty")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.url %q is not an absolute URL", c.Server.URL)
	}
	if c.Server.TimeoutSeconds <= 0 {
		return errors.New("server.timeout_seconds must be positive")
	}
	if c.Cache.Enabled {
		if _, err := cache.NewTTLConfig(c.Cache.TTLSeconds); err != nil {
			return fmt.Errorf("cache.ttl_seconds: %w", err)
		}
		if c.Cache.MaxEntries <= 0 {
			return errors.New("cache.max_entries must be positive")
		}
	}
	if c.Map.DebounceMS < 0 {
		return errors.New("map.debounce_ms must not be negative")
	}
	if c.Map.LayerLimit <= 0 {
		return errors.New("map.layer_limit must be positive")
	}
	return nil
}

// ClientTimeout is the HTTP client timeout as a duration.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// CacheTTL is the cache entry lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// DebounceWindow is the month-change coalescing window as a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Map.DebounceMS) * time.Millisecond
}

// ToLogging bridges the YAML section to the logging package's config.
// A configured file implies file output.
func (lc LoggingConfig) ToLogging() logging.Config {
	output := "stderr"
	if lc.File != "" {
		output = "file"
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}
