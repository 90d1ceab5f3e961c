package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STORE_MAX_TX_RETRIES", "")

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Store.MaxTxRetries != 10 {
		t.Errorf("expected 10 retries, got %d", cfg.Store.MaxTxRetries)
	}
	if cfg.Auth.TokenDuration != 24*time.Hour {
		t.Errorf("expected 24h token duration, got %s", cfg.Auth.TokenDuration)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_OP_TIMEOUT", "750ms")
	t.Setenv("NEW_RELIC_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("expected 9090, got %s", cfg.Server.Port)
	}
	if cfg.Store.OpTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %s", cfg.Store.OpTimeout)
	}
	if !cfg.NewRelic.Enabled {
		t.Error("expected New Relic enabled")
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Redis.DB)
	}
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("STORE_OP_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Redis.DB != 0 {
		t.Errorf("expected fallback 0, got %d", cfg.Redis.DB)
	}
	if cfg.Store.OpTimeout != 5*time.Second {
		t.Errorf("expected fallback 5s, got %s", cfg.Store.OpTimeout)
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.AllowedOrigins[0] != "https://a.example" || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
}
