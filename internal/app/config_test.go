package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.EnrichTimeout != 5*time.Second {
		t.Fatalf("unexpected EnrichTimeout: %v", cfg.EnrichTimeout)
	}
	if cfg.KinopoiskBaseURL != "https://api.kinopoisk.dev" {
		t.Fatalf("unexpected KinopoiskBaseURL: %q", cfg.KinopoiskBaseURL)
	}
	if cfg.KinopoiskMaxRPS != 5 {
		t.Fatalf("unexpected KinopoiskMaxRPS: %d", cfg.KinopoiskMaxRPS)
	}
	if cfg.MongoDB != "cinemabot" {
		t.Fatalf("unexpected MongoDB: %q", cfg.MongoDB)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", " :9999 ")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENRICH_TIMEOUT_SECONDS", "2")
	t.Setenv("KINOPOISK_MAX_RPS", "not a number")

	cfg := LoadConfig()
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected LogLevel: %q", cfg.LogLevel)
	}
	if cfg.EnrichTimeout != 2*time.Second {
		t.Fatalf("unexpected EnrichTimeout: %v", cfg.EnrichTimeout)
	}
	if cfg.KinopoiskMaxRPS != 5 {
		t.Fatalf("invalid value must fall back to default, got %d", cfg.KinopoiskMaxRPS)
	}
}
