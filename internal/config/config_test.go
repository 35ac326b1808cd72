package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBackend, EnvPostgresDSN, EnvSQLitePath, EnvAddr, EnvSessionSecret, EnvServerKey} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if got, want := cfg.SQLitePath(), filepath.Join(dir, SQLiteFile); got != want {
		t.Errorf("SQLitePath = %q, want %q", got, want)
	}
	if cfg.DurableOrder {
		t.Error("durable order should be off by default")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), `
backend = "postgres"
durable_order = true
log_level = "debug"

[postgres]
dsn = "postgres://localhost/todo"

[server]
addr = ":9000"
allowed_origins = ["http://localhost:3000"]

[session]
ttl = "2h"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendPostgres || cfg.Postgres.DSN != "postgres://localhost/todo" {
		t.Errorf("backend = %q dsn = %q", cfg.Backend, cfg.Postgres.DSN)
	}
	if !cfg.DurableOrder || cfg.LogLevel != "debug" {
		t.Errorf("durable = %v level = %q", cfg.DurableOrder, cfg.LogLevel)
	}
	if cfg.Server.Addr != ":9000" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if ttl, err := cfg.SessionTTL(); err != nil || ttl != 2*time.Hour {
		t.Errorf("SessionTTL = %v, %v", ttl, err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), "backend = \"sqlite\"\n[server]\naddr = \":9000\"\naccess_key = \"from-file\"\n")
	writeFile(t, filepath.Join(dir, EnvFile), "TODOBOARD_SQLITE_PATH=/tmp/from-dotenv.db\nTODOBOARD_ADDR=:7000\n")
	t.Setenv(EnvAddr, ":6000")
	t.Setenv(EnvSessionSecret, "s3cret")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SQLitePath() != "/tmp/from-dotenv.db" {
		t.Errorf("SQLitePath = %q, want dotenv value", cfg.SQLitePath())
	}
	if cfg.Server.Addr != ":6000" {
		t.Errorf("Addr = %q, process env should win over dotenv", cfg.Server.Addr)
	}
	if cfg.SessionSecret != "s3cret" {
		t.Errorf("SessionSecret = %q", cfg.SessionSecret)
	}
	if cfg.Server.AccessKey != "from-file" {
		t.Errorf("AccessKey = %q", cfg.Server.AccessKey)
	}

	t.Setenv(EnvServerKey, "from-env")
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.AccessKey != "from-env" {
		t.Errorf("AccessKey = %q, want env value", cfg.Server.AccessKey)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown backend", `backend = "redis"`, "unknown backend"},
		{"postgres without dsn", `backend = "postgres"`, "requires"},
		{"bad ttl", "[session]\nttl = \"soon\"", "ttl"},
		{"bad toml", `backend = `, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, ConfigFile), tt.content)
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg, err := New("/tmp/tb")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tests := map[string]string{
		cfg.ConfigPath():      "/tmp/tb/config.toml",
		cfg.OAuthClientPath(): "/tmp/tb/oauth_client.json",
		cfg.TokenPath():       "/tmp/tb/token.json",
		cfg.SessionPath():     "/tmp/tb/session.jwt",
		cfg.SessionKeyPath():  "/tmp/tb/session.key",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultConfigDir(); got != "/xdg/todoboard" {
		t.Errorf("DefaultConfigDir = %q", got)
	}
}
