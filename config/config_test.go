package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Queue.MaxRetries != 3 {
		t.Fatalf("max retries = %d", cfg.Queue.MaxRetries)
	}
	if cfg.Queue.DefaultTimeout() != 120*time.Second {
		t.Fatalf("timeout = %v", cfg.Queue.DefaultTimeout())
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
log:
  level: debug
storage:
  backend: sqlite
  path: /tmp/agentq-test.db
queue:
  max_retries: 5
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("level = %q", cfg.Log.Level)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "/tmp/agentq-test.db" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Queue.MaxRetries != 5 {
		t.Fatalf("max retries = %d", cfg.Queue.MaxRetries)
	}
	// Unset fields keep defaults.
	if cfg.Queue.DefaultTimeoutSec != 120 {
		t.Fatalf("timeout = %d, want default", cfg.Queue.DefaultTimeoutSec)
	}
	if cfg.Cache.MaxSize != 1000 {
		t.Fatalf("cache size = %d, want default", cfg.Cache.MaxSize)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: cassandra\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
