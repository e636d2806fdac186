package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "LOG_LEVEL", "CORS_ORIGIN", "JANITOR_SCHEDULE", "PURGE_SCHEDULE",
	"MAX_ROOMS", "RECENT_RESULTS", "ROOM_IDLE_TTL", "RESULT_RETENTION",
	"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
}

// clearEnv blanks every key for the test; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" || cfg.CORSOrigin != "*" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.MaxRooms != 50 || cfg.RoomIdleTTL != 10*time.Minute || cfg.ResultRetention != 720*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.JanitorSchedule != "@every 1m" {
		t.Fatalf("janitor schedule = %q", cfg.JanitorSchedule)
	}
	if cfg.PostgresEnabled() || cfg.RedisEnabled() {
		t.Fatalf("storage enabled without addresses")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	body := "PORT=9090\nMAX_ROOMS=3\nROOM_IDLE_TTL=90s\nREDIS_ADDR=localhost:6379\nREDIS_DB=2\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.MaxRooms != 3 || cfg.RoomIdleTTL != 90*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.RedisEnabled() || cfg.RedisDB != 2 {
		t.Fatalf("redis config = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PORT=9090\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("port = %q, want the environment value", cfg.Port)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct{ key, value string }{
		{"MAX_ROOMS", "lots"},
		{"ROOM_IDLE_TTL", "10"},
		{"RESULT_RETENTION", "forever"},
		{"REDIS_DB", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%q accepted", tt.key, tt.value)
			}
		})
	}
}
