package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BEDROCK_MODEL_ID", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BedrockModelID != "" {
		t.Fatalf("expected default bedrock model empty, got %s", cfg.BedrockModelID)
	}
	if cfg.SlotDaysAhead != 7 {
		t.Fatalf("expected default slot horizon, got %d", cfg.SlotDaysAhead)
	}
	if cfg.SlotLimit != 10 {
		t.Fatalf("expected default slot limit, got %d", cfg.SlotLimit)
	}
	if cfg.ReminderLeadTime != 24*time.Hour {
		t.Fatalf("expected default reminder lead time, got %s", cfg.ReminderLeadTime)
	}
	if cfg.ClassifierProvider != "" {
		t.Fatalf("expected classifier disabled by default, got %s", cfg.ClassifierProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CLASSIFIER_PROVIDER", "Bedrock")
	t.Setenv("CLASSIFIER_TIMEOUT", "5s")
	t.Setenv("SLOT_DAYS_AHEAD", "14")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://chat.example.com, https://admin.example.com")
	t.Setenv("TRIAGE_CACHE_TTL", "1h")
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
	if cfg.ClassifierProvider != "bedrock" {
		t.Fatalf("expected normalized classifier provider, got %s", cfg.ClassifierProvider)
	}
	if cfg.ClassifierTimeout != 5*time.Second {
		t.Fatalf("expected classifier timeout override, got %s", cfg.ClassifierTimeout)
	}
	if cfg.SlotDaysAhead != 14 {
		t.Fatalf("expected slot horizon override, got %d", cfg.SlotDaysAhead)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected parsed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.TriageCacheTTL != time.Hour {
		t.Fatalf("expected cache ttl override, got %s", cfg.TriageCacheTTL)
	}
}
