package config

import (
	"reflect"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MARKETPLACE_BASE_URL", "https://api.layali.example/api")
}

// TestParseCSVEnv проверяет разбор списка ролей из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("AUTH_ALLOWED_ROLES", " Personal, ,ADMIN ")

	got := parseCSVEnv("AUTH_ALLOWED_ROLES")
	want := []string{"personal", "admin"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestLoadDefaults проверяет значения по умолчанию.
func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Marketplace.Currency != "KWD" || cfg.Marketplace.CurrencyPlaces != 3 {
		t.Fatalf("unexpected currency %s/%d", cfg.Marketplace.Currency, cfg.Marketplace.CurrencyPlaces)
	}
	if cfg.Session.IdleTTL != 30*time.Minute {
		t.Fatalf("unexpected idle ttl %s", cfg.Session.IdleTTL)
	}
	if !reflect.DeepEqual(cfg.Auth.AllowedRoles, []string{"personal"}) {
		t.Fatalf("unexpected roles %v", cfg.Auth.AllowedRoles)
	}
}

// TestLoadValidation проверяет отказ при некорректной конфигурации.
func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"missing marketplace": {"MARKETPLACE_BASE_URL": ""},
		"relative url":        {"MARKETPLACE_BASE_URL": "api/v1"},
		"rooted path":         {"MARKETPLACE_BASE_URL": "/api"},
		"negative places":     {"MARKETPLACE_CURRENCY_PLACES": "-1"},
		"missing secret":      {"JWT_SECRET": ""},
		"sweep exceeds ttl":   {"SESSION_IDLE_TTL": "1m", "SESSION_SWEEP_INTERVAL": "5m"},
		"bad duration":        {"MARKETPLACE_TIMEOUT": "soon"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range env {
				t.Setenv(key, value)
			}

			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestLoadZeroCurrencyPlaces проверяет валюту без дробной части.
func TestLoadZeroCurrencyPlaces(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MARKETPLACE_CURRENCY", "jpy")
	t.Setenv("MARKETPLACE_CURRENCY_PLACES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Marketplace.CurrencyPlaces != 0 {
		t.Fatalf("expected 0 currency places, got %d", cfg.Marketplace.CurrencyPlaces)
	}
	if cfg.Marketplace.Currency != "JPY" {
		t.Fatalf("expected JPY, got %s", cfg.Marketplace.Currency)
	}
}
