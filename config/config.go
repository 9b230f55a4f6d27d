// Package config maps the engine's YAML configuration file. Every field
// has a working default so the engine can run with no file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML document.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Queue   QueueConfig   `yaml:"queue"`
	Safety  SafetyConfig  `yaml:"safety"`
	Cache   CacheConfig   `yaml:"cache"`
}

type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `yaml:"level"`
}

type StorageConfig struct {
	// Backend selects the write-through store: memory, sqlite, bolt, redis.
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path,omitempty"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

type QueueConfig struct {
	MaxRetries        int `yaml:"max_retries"`
	DefaultTimeoutSec int `yaml:"default_timeout_sec"`
}

type SafetyConfig struct {
	MaxPayloadBytes int `yaml:"max_payload_bytes"`
	MaxStringLen    int `yaml:"max_string_len"`
}

type CacheConfig struct {
	MaxSize int `yaml:"max_size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "data/agentq.db",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Queue: QueueConfig{
			MaxRetries:        3,
			DefaultTimeoutSec: 120,
		},
		Cache: CacheConfig{MaxSize: 1000},
	}
}

// Load reads path and overlays it on Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultTimeout converts the configured per-task timeout to a duration.
func (c QueueConfig) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSec) * time.Second
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "sqlite", "bolt", "redis":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries must be >= 0")
	}
	return nil
}
