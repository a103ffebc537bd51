package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
location:
  poll_interval: 30s
  stale_retention: 10m
radar:
  default_radius_km: 8
  default_limit: 25
messages:
  rate_per_minute: 12
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Location.PollInterval != 30*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.Location.PollInterval)
	}
	if cfg.Location.StaleRetention != 10*time.Minute {
		t.Fatalf("unexpected stale retention: %s", cfg.Location.StaleRetention)
	}
	if cfg.Radar.DefaultRadiusKM != 8 {
		t.Fatalf("unexpected default radius: %v", cfg.Radar.DefaultRadiusKM)
	}
	if cfg.Radar.DefaultLimit != 25 {
		t.Fatalf("unexpected default limit: %d", cfg.Radar.DefaultLimit)
	}
	if cfg.Messages.RatePerMinute != 12 {
		t.Fatalf("unexpected message rate/min: %d", cfg.Messages.RatePerMinute)
	}

	// untouched sections keep their defaults
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Location.CleanupInterval != time.Minute {
		t.Fatalf("unexpected cleanup interval: %s", cfg.Location.CleanupInterval)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Location.StaleRetention != 5*time.Minute {
		t.Fatalf("unexpected stale retention default: %s", cfg.Location.StaleRetention)
	}
	if cfg.Auth.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("unexpected jwt ttl default: %s", cfg.Auth.JWTAccessTTL)
	}
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("POSTGRES_DSN", "postgres://env-wins")
	t.Setenv("LOCATION_POLL_INTERVAL", "2m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://env-wins" {
		t.Fatalf("unexpected dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Location.PollInterval != 2*time.Minute {
		t.Fatalf("unexpected poll interval: %s", cfg.Location.PollInterval)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
		"JWT_SECRET", "JWT_ACCESS_TTL", "REFRESH_TTL",
		"LOCATION_POLL_INTERVAL", "LOCATION_STALE_RETENTION", "LOCATION_CLEANUP_INTERVAL",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}
