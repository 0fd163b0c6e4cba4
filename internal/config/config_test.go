package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CONTEXT_MAX_HISTORY", "")
	t.Setenv("CONTEXT_IDLE_TTL", "")
	t.Setenv("CONTEXT_SWEEP_INTERVAL", "")
	t.Setenv("HIPAA_AUTO_REDACT", "")
	t.Setenv("VOICE_INPUT_ENABLED", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected in-memory context store by default, got redis %s", cfg.RedisAddr)
	}
	if cfg.ContextMaxHistory != 10 {
		t.Fatalf("expected history bound 10, got %d", cfg.ContextMaxHistory)
	}
	if cfg.ContextIdleTTL != 30*time.Minute {
		t.Fatalf("expected 30m idle ttl, got %s", cfg.ContextIdleTTL)
	}
	if cfg.ContextSweepInterval != 15*time.Minute {
		t.Fatalf("expected 15m sweep interval, got %s", cfg.ContextSweepInterval)
	}
	if !cfg.HIPAAAutoRedact {
		t.Fatalf("expected auto redaction enabled by default")
	}
	if cfg.VoiceInputEnabled {
		t.Fatalf("expected voice input disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CONTEXT_IDLE_TTL", "45m")
	t.Setenv("MAX_SPECIALTIES", "1")
	t.Setenv("EHR_ENABLED", "true")
	t.Setenv("RESPONSE_SEED", "42")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.ContextIdleTTL != 45*time.Minute {
		t.Fatalf("expected idle ttl override, got %s", cfg.ContextIdleTTL)
	}
	if cfg.MaxSpecialties != 1 {
		t.Fatalf("expected max specialties override, got %d", cfg.MaxSpecialties)
	}
	if cfg.ResponseSeed != 42 {
		t.Fatalf("expected seed override, got %d", cfg.ResponseSeed)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins %#v", cfg.CORSAllowedOrigins)
	}

	features := cfg.Features()
	if !features.EHR || features.MaxSpecialties != 1 {
		t.Fatalf("features did not reflect overrides: %#v", features)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CONTEXT_MAX_HISTORY", "ten")
	t.Setenv("CONTEXT_SWEEP_INTERVAL", "soon")
	t.Setenv("TRIAGE_ESCALATE", "maybe")
	cfg := Load()
	if cfg.ContextMaxHistory != 10 {
		t.Fatalf("expected fallback history bound, got %d", cfg.ContextMaxHistory)
	}
	if cfg.ContextSweepInterval != 15*time.Minute {
		t.Fatalf("expected fallback sweep interval, got %s", cfg.ContextSweepInterval)
	}
	if !cfg.TriageEscalate {
		t.Fatalf("expected fallback escalate=true")
	}
}

func TestLoadRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("STAFF_AUTH_SECRET", "s3cret")
	cfg := Load()
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate 2.5, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 10 {
		t.Fatalf("expected default burst 10, got %d", cfg.RateLimitBurst)
	}
	if cfg.StaffAuthSecret != "s3cret" {
		t.Fatalf("expected staff secret to load")
	}
}
