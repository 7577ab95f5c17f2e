package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_TOKEN_TTL_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenTTL() != 24*time.Hour {
		t.Fatalf("expected one day ttl, got %v", cfg.Auth.TokenTTL())
	}
	if len(cfg.Auth.JWTSecret) < minJWTSecretLength {
		t.Fatalf("development secret too short")
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without secret in production")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "at least") {
		t.Fatalf("expected short secret error, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("s", 40))
	t.Setenv("AUTH_TOKEN_TTL_SECONDS", "120")
	t.Setenv("CACHE_STATS_TTL_SECONDS", "5")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenTTL() != 2*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.Auth.TokenTTL())
	}
	if cfg.Cache.StatsTTL() != 5*time.Second {
		t.Fatalf("unexpected stats ttl %v", cfg.Cache.StatsTTL())
	}
	if cfg.App.Addr() != "0.0.0.0:9090" || cfg.Redis.DB != 3 {
		t.Fatalf("unexpected app/redis config: %+v %+v", cfg.App, cfg.Redis)
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid REDIS_DB")
	}
}

func TestLoadRejectsNonPositiveTokenTTL(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")
	for _, ttl := range []string{"0", "-60"} {
		t.Setenv("AUTH_TOKEN_TTL_SECONDS", ttl)
		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "AUTH_TOKEN_TTL_SECONDS") {
			t.Fatalf("ttl %s: expected rejection, got %v", ttl, err)
		}
	}
}
