package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithAliasEnv(t *testing.T) {
	t.Setenv("APP_CONFIG", "config/does-not-exist.yaml")
	t.Setenv("DATAPORTAL_LISTEN_ADDR", "127.0.0.1:8080")
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9090" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver from db url, got %s", cfg.DBDriver)
	}
	if cfg.ClientURI != "http://127.0.0.1:9090" {
		t.Fatalf("expected client uri to default to loopback, got %s", cfg.ClientURI)
	}
	if cfg.Cache.TTLSeconds != 900 {
		t.Fatalf("expected 15 minute cache ttl, got %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Sync.DebounceMS != 300 {
		t.Fatalf("expected 300ms debounce, got %d", cfg.Sync.DebounceMS)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	body := []byte("listen_addr: 127.0.0.1:7070\napp_env: DEV\ndb_driver: sqlite\ndb_path: portal.db\nclient_uri: http://portal.local/\nscreenshot:\n  timeout_sec: 12\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.AppEnv != "dev" {
		t.Fatalf("expected lowercased app env, got %s", cfg.AppEnv)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBPath != "portal.db" {
		t.Fatalf("unexpected db settings: %s %s", cfg.DBDriver, cfg.DBPath)
	}
	if cfg.ClientURI != "http://portal.local" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.ClientURI)
	}
	if cfg.Screenshot.TimeoutSec != 12 {
		t.Fatalf("unexpected screenshot timeout: %d", cfg.Screenshot.TimeoutSec)
	}
}

func TestPostgresURLFromParts(t *testing.T) {
	got := postgresURLFromParts("db", "shift", "secret", "dataportal")
	if got != "postgres://shift:secret@db/dataportal" {
		t.Fatalf("unexpected url: %s", got)
	}
}
