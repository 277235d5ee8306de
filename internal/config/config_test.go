package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnvOverridesDefaults(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{
		"PORT":                     "9090",
		"DB_DRIVER":                "sqlite",
		"DB_NAME":                  "pos",
		"ACCESS_TOKEN_TTL_MINUTES": "15",
		"CORS_ORIGINS":             "http://a.test, http://b.test,",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if got := cfg.DatabaseDSN(); got != "pos.db" {
		t.Errorf("DatabaseDSN = %q", got)
	}
	if cfg.AccessTokenTTL() != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v", cfg.AccessTokenTTL())
	}
	if cfg.RefreshTokenTTL() != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v", cfg.RefreshTokenTTL())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestApplyEnvRejectsBadTTL(t *testing.T) {
	cfg := Default()
	for _, v := range []string{"abc", "0", "-5"} {
		if err := cfg.applyEnv(mapLookup(map[string]string{"REFRESH_TOKEN_TTL_MINUTES": v})); err == nil {
			t.Errorf("expected error for %q", v)
		}
	}
}

func TestDatabaseDSN(t *testing.T) {
	tests := []struct {
		name string
		db   DatabaseConfig
		want string
	}{
		{"postgres", DatabaseConfig{Driver: "postgres", User: "u", Password: "p", Host: "h", Port: "5432", Name: "d", SSLMode: "disable"}, "postgres://u:p@h:5432/d?sslmode=disable"},
		{"mysql", DatabaseConfig{Driver: "mysql", User: "u", Password: "p", Host: "h", Port: "3306", Name: "d"}, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"override", DatabaseConfig{Driver: "mysql", DSN: "custom"}, "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{DB: tt.db}
			if got := cfg.DatabaseDSN(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "port: \"7000\"\ndatabase:\n  driver: mysql\n  host: db.internal\nlog_format: json\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	if err := cfg.mergeYAML(path); err != nil {
		t.Fatalf("mergeYAML: %v", err)
	}
	if cfg.Port != "7000" || cfg.DB.Driver != "mysql" || cfg.DB.Host != "db.internal" || cfg.LogFormat != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.DB.User != "postgres" {
		t.Errorf("unset YAML keys should keep defaults, got user %q", cfg.DB.User)
	}
}

func TestLoadReleaseRequiresSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET in release mode")
	}
}

func TestLoadDevFallbackSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("expected development secret")
	}
}
