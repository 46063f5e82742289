package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenTDB.Amount != 10 {
		t.Fatalf("amount = %d, want 10", cfg.OpenTDB.Amount)
	}
	if cfg.OpenTDB.Timeout != 15*time.Second {
		t.Fatalf("timeout = %s", cfg.OpenTDB.Timeout)
	}
	if cfg.OpenTDB.BaseURL != "https://opentdb.com" {
		t.Fatalf("base url = %q", cfg.OpenTDB.BaseURL)
	}
	if cfg.Server.Addr != ":8080" || cfg.Session.Backend != "memory" || cfg.UI.Mode != "auto" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.yaml")
	content := `
opentdb:
  amount: 5
  timeout: 3s
session:
  backend: sqlite
  sqlite_path: sessions.db
  ttl: 10m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("QUIZ_OPENTDB_AMOUNT", "7")
	t.Setenv("ADDR", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenTDB.Amount != 7 {
		t.Fatalf("env must override file: amount = %d", cfg.OpenTDB.Amount)
	}
	if cfg.OpenTDB.Timeout != 3*time.Second {
		t.Fatalf("timeout = %s", cfg.OpenTDB.Timeout)
	}
	if cfg.Session.Backend != "sqlite" || cfg.Session.SQLitePath != "sessions.db" || cfg.Session.TTL != 10*time.Minute {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			UI:      UI{Mode: "auto"},
			OpenTDB: OpenTDB{Amount: 10},
			Session: Session{Backend: "memory", TTL: time.Minute},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero amount", mutate: func(c *Config) { c.OpenTDB.Amount = 0 }},
		{name: "amount above max", mutate: func(c *Config) { c.OpenTDB.Amount = 51 }},
		{name: "negative timeout", mutate: func(c *Config) { c.OpenTDB.Timeout = -time.Second }},
		{name: "bad ui mode", mutate: func(c *Config) { c.UI.Mode = "fancy" }},
		{name: "bad backend", mutate: func(c *Config) { c.Session.Backend = "postgres" }},
		{name: "sqlite without path", mutate: func(c *Config) { c.Session.Backend = "sqlite" }},
		{name: "redis without addr", mutate: func(c *Config) { c.Session.Backend = "redis" }},
		{name: "zero ttl", mutate: func(c *Config) { c.Session.TTL = 0 }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("base config must validate: %v", err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
