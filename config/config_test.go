package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Interests.Source != "redis" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	minDate, maxDate := cfg.Window()
	if minDate.Year() != 2019 || maxDate.Month() != time.July {
		t.Errorf("window = %v .. %v", minDate, maxDate)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  request_timeout: 5s
redis:
  addr: "redis:6379"
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("server not overridden: %+v", cfg.Server)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis.addr = %q", cfg.Redis.Addr)
	}
	// 文件没写的字段保留缺省值
	if cfg.Dataset.MinDate != "2019-06-13" {
		t.Errorf("dataset.min_date = %q", cfg.Dataset.MinDate)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEWSBI_POSTGRES_DSN", "postgres://env/db")
	t.Setenv("NEWSBI_REDIS_ADDR", "env:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Postgres.DSN != "postgres://env/db" || cfg.Redis.Addr != "env:6379" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadFeastSourceRequiresHost(t *testing.T) {
	path := writeConfig(t, `
interests:
  source: feast
`)
	if _, err := Load(path); err == nil {
		t.Fatal("feast source without host should be rejected")
	}

	path = writeConfig(t, `
interests:
  source: feast
  feast:
    host: feast-serving
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Interests.Feast.Port != 6565 {
		t.Errorf("feast port default = %d, want 6565", cfg.Interests.Feast.Port)
	}
}

func TestLoadRejectsBadSource(t *testing.T) {
	path := writeConfig(t, `
interests:
  source: cassandra
`)
	if _, err := Load(path); err == nil {
		t.Fatal("unknown interests.source should be rejected")
	}
}
