package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("WORKER_PENDING_CONFIRMATION_HOURS", "")
	t.Setenv("MEMBERSHIP_MAX_INTERNS_PER_HR", "")
	t.Setenv("WORKER_ABSENCE_LIMIT_DAYS", "")
	t.Setenv("AUTH_VERIFICATION_TTL_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != "4000" {
		t.Fatalf("expected default port 4000, got %q", cfg.App.Port)
	}
	if cfg.Membership.MaxInternsPerHR != 20 {
		t.Fatalf("expected default capacity 20, got %d", cfg.Membership.MaxInternsPerHR)
	}
	if got := cfg.Worker.PendingConfirmationWindow(); got != 24*time.Hour {
		t.Fatalf("expected 24h confirmation window, got %s", got)
	}
	if cfg.Worker.AbsenceLimitDays != 2 {
		t.Fatalf("expected absence limit 2, got %d", cfg.Worker.AbsenceLimitDays)
	}
	if cfg.Auth.VerificationTTLMinutes != 10 {
		t.Fatalf("expected 10 minute verification ttl, got %d", cfg.Auth.VerificationTTLMinutes)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("WORKER_ACCOUNT_RETENTION_DAYS", "3")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:9090" {
		t.Fatalf("unexpected addr %q", cfg.App.Addr())
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.App.CORSOrigins)
	}
	if got := cfg.Worker.AccountRetention(); got != 72*time.Hour {
		t.Fatalf("expected 72h retention, got %s", got)
	}
	if cfg.Postgres.RunMigrations {
		t.Fatalf("expected migrations disabled")
	}
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric REDIS_DB")
	}
}

func TestAppConfig_RequestTimeout(t *testing.T) {
	if got := (AppConfig{}).RequestTimeout(); got != 0 {
		t.Fatalf("expected zero timeout, got %s", got)
	}
	if got := (AppConfig{RequestTimeoutSeconds: 5}).RequestTimeout(); got != 5*time.Second {
		t.Fatalf("expected 5s, got %s", got)
	}
}
