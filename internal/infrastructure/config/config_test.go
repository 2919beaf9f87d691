package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/pocketledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StoreBackend != config.StoreMemory {
		t.Fatalf("expected memory backend by default, got %q", cfg.StoreBackend)
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis to be disabled by default, got %q", cfg.RedisURL)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.SettingsDebounce != 2*time.Second {
		t.Fatalf("expected 2s settings debounce, got %s", cfg.SettingsDebounce)
	}

	if cfg.DueSoonWindowDays != 7 {
		t.Fatalf("expected 7 day due-soon window, got %d", cfg.DueSoonWindowDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SETTINGS_DEBOUNCE", "500ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StoreBackend != config.StorePostgres {
		t.Fatalf("expected postgres backend, got %s", cfg.StoreBackend)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.SettingsDebounce != 500*time.Millisecond {
		t.Fatalf("expected debounce override, got %s", cfg.SettingsDebounce)
	}

	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("LEDGER_ID=from-file\nHTTP_PORT=7000\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("ENV_FILE", path)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LEDGER_ID", "")
	os.Unsetenv("LEDGER_ID")
	t.Cleanup(func() { os.Unsetenv("LEDGER_ID") })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.LedgerID != "from-file" {
		t.Fatalf("expected ledger id from env file, got %q", cfg.LedgerID)
	}

	if cfg.HTTPPort != "9000" {
		t.Fatalf("expected process environment to win over env file, got %s", cfg.HTTPPort)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadInvalidBackend(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("STORE_BACKEND", "sqlite")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown store backend")
	}
}
