package config

import (
	"testing"
	"time"
)

func validLocal() Config {
	return Config{
		App:  AppConfig{Env: "local", Port: 8080},
		DB:   DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "registry"},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "iss"
	c.Auth.JWTAudience = "aud"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Storage.Driver != StorageDriverPostgres {
		t.Fatalf("expected postgres default driver, got %q", c.Storage.Driver)
	}
	if c.Search.Mode != SearchModeRanked {
		t.Fatalf("expected ranked default, got %q", c.Search.Mode)
	}
	if c.Submit.RateLimit != 5 || c.Submit.RateWindow != time.Hour {
		t.Fatalf("expected 5/h submission default, got %d/%s", c.Submit.RateLimit, c.Submit.RateWindow)
	}
}

func TestValidate_MemoryDriverSkipsDB(t *testing.T) {
	c := Config{
		App:     AppConfig{Env: "dev", Port: 8080},
		Storage: StorageConfig{Driver: StorageDriverMemory},
		Auth:    AuthConfig{JWTSecret: "secret"},
		Search:  SearchConfig{Mode: SearchModeFallback},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected memory config to validate, got %v", err)
	}
}

func TestValidate_RejectsMemoryInProduction(t *testing.T) {
	c := Config{
		App:     AppConfig{Env: "production", Port: 8080},
		Storage: StorageConfig{Driver: StorageDriverMemory},
		Auth:    AuthConfig{JWTSecret: "secret", JWTIssuer: "i", JWTAudience: "a"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for memory storage in production")
	}
}

func TestValidate_RejectsUnknownSearchMode(t *testing.T) {
	c := validLocal()
	c.Search.Mode = "fuzzy"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown search mode")
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SEARCH_MODE", "fallback")
	t.Setenv("SUBMIT_RATE_LIMIT", "3")
	t.Setenv("SUBMIT_RATE_WINDOW", "10m")
	t.Setenv("REDIS_HOST", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Port != 9090 || c.Search.Mode != SearchModeFallback {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.Submit.RateLimit != 3 || c.Submit.RateWindow != 10*time.Minute {
		t.Fatalf("unexpected submit config: %+v", c.Submit)
	}
	if c.RedisEnabled() {
		t.Fatalf("expected redis disabled")
	}
}
