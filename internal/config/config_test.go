package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "stock")
	t.Setenv("DB_NAME", "stock")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Errorf("unexpected server defaults: %s %s", cfg.Port, cfg.Env)
	}
	if cfg.JWTTTL != 12*time.Hour || cfg.Session.TTL != 12*time.Hour {
		t.Errorf("unexpected ttl defaults: %s %s", cfg.JWTTTL, cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "stockcentral_session" || cfg.Auth.CookieName != "stockcentral_admin" {
		t.Errorf("unexpected cookie names: %s %s", cfg.Session.CookieName, cfg.Auth.CookieName)
	}
	if cfg.Auth.LoginRatePerMin != 10 || cfg.Metrics.Prefix != "stockcentral" {
		t.Errorf("unexpected auth/metrics defaults: %+v %+v", cfg.Auth, cfg.Metrics)
	}
	if cfg.Session.Store != SessionStoreRedis {
		t.Errorf("expected redis session store by default, got %q", cfg.Session.Store)
	}
	if cfg.IsProduction() {
		t.Error("development config reported as production")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SESSION_MEMORY_SIZE", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() || cfg.Session.TTL != 30*time.Minute || !cfg.Session.SecureCookies {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Session.Store != SessionStoreMemory || cfg.Session.MemorySize != 500 {
		t.Errorf("session store override not applied: %+v", cfg.Session)
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Redis.DB)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("Missing Secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_SECRET", "")
		if _, err := Load(); err == nil {
			t.Error("expected error for missing JWT_SECRET")
		}
	})

	t.Run("Missing Database", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DB_HOST", "")
		if _, err := Load(); err == nil {
			t.Error("expected error for incomplete database config")
		}
	})

	t.Run("Invalid Duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_TTL", "forever")
		if _, err := Load(); err == nil {
			t.Error("expected error for invalid JWT_TTL")
		}
	})

	t.Run("Non Positive Login Rate", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOGIN_RATE_PER_MIN", "0")
		if _, err := Load(); err == nil {
			t.Error("expected error for LOGIN_RATE_PER_MIN=0")
		}
	})

	t.Run("Unknown Session Store", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_STORE", "memcached")
		if _, err := Load(); err == nil {
			t.Error("expected error for unknown SESSION_STORE")
		}
	})
}
