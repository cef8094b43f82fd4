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
http:
  addr: ":9090"
  request_timeout: 3s
postgres:
  auto_migrate: false
s3:
  bucket: covers
admin:
  email: root@example.com
  password: super-secret
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.HTTP.RequestTimeout != 3*time.Second {
		t.Fatalf("unexpected request timeout: %s", cfg.HTTP.RequestTimeout)
	}
	if cfg.Postgres.AutoMigrate {
		t.Fatalf("auto_migrate should be disabled by yaml")
	}
	if cfg.S3.Bucket != "covers" {
		t.Fatalf("unexpected bucket: %s", cfg.S3.Bucket)
	}
	if cfg.Admin.Email != "root@example.com" || cfg.Admin.FullName != "Administrator" {
		t.Fatalf("unexpected admin config: %+v", cfg.Admin)
	}

	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Fatalf("read timeout default should stay 5s, got %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.Auth.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("jwt access ttl default should stay 15m, got %s", cfg.Auth.JWTAccessTTL)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Env != "dev" || cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected defaults: env=%s addr=%s", cfg.Env, cfg.HTTP.Addr)
	}
	if !cfg.Postgres.AutoMigrate {
		t.Fatalf("auto_migrate should default to true")
	}
	if cfg.Admin.Email != "" {
		t.Fatalf("admin bootstrap should be disabled by default")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("REFRESH_TTL", "240h")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")
	t.Setenv("ADMIN_PASSWORD", "long-enough")
	t.Setenv("CLEANUP_INTERVAL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7000" || cfg.Redis.DB != 4 || !cfg.S3.UseSSL || cfg.Auth.RefreshTTL != 240*time.Hour {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Admin.Email != "ops@example.com" {
		t.Fatalf("unexpected admin email: %s", cfg.Admin.Email)
	}
	if cfg.Cleanup.Interval != 30*time.Minute || cfg.Cleanup.ImageRetention != 30*24*time.Hour {
		t.Fatalf("unexpected cleanup config: %+v", cfg.Cleanup)
	}
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_READ_TIMEOUT", "soon")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error when jwt secret is the default in production")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("unexpected error with explicit secret: %v", err)
	}
}

func TestLoadRejectsShortAdminPassword(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ADMIN_EMAIL", "ops@example.com")
	t.Setenv("ADMIN_PASSWORD", "short")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for short admin password")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"HTTP_REQUEST_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"POSTGRES_AUTO_MIGRATE",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_REGION",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"LOGIN_RATE_PER_MINUTE",
		"LOGIN_RATE_PER_HOUR",
		"ADMIN_EMAIL",
		"ADMIN_PASSWORD",
		"ADMIN_FULL_NAME",
		"CLEANUP_INTERVAL",
		"CLEANUP_IMAGE_RETENTION",
	} {
		t.Setenv(key, "")
	}
}
