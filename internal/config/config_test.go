package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "SERVER_WRITE_TIMEOUT", "PROVIDER", "SESSION_TTL", "NATS_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.ServerWriteTimeout != 0 {
		t.Errorf("ServerWriteTimeout = %v, want 0 (disabled for SSE)", cfg.ServerWriteTimeout)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if cfg.NATSURL != "" {
		t.Errorf("NATSURL = %q, want empty (bus disabled by default)", cfg.NATSURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	if cfg.ServerPort != "9999" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.ProviderAPIKey() != "sk-test" {
		t.Errorf("ProviderAPIKey() = %q, want sk-test", cfg.ProviderAPIKey())
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.RateLimitRequests != 5 {
		t.Errorf("RateLimitRequests = %d", cfg.RateLimitRequests)
	}
	if !cfg.TracingEnabled {
		t.Error("TracingEnabled should be true")
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("TRACING_ENABLED", "yep")

	cfg := Load()

	if cfg.RateLimitRequests != 60 {
		t.Errorf("RateLimitRequests = %d, want default 60", cfg.RateLimitRequests)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want default 2h", cfg.SessionTTL)
	}
	if cfg.TracingEnabled {
		t.Error("TracingEnabled should fall back to false")
	}
}
