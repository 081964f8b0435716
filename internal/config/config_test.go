package config_test

import (
	"errors"
	"testing"
	"time"

	"sangkhep/internal/config"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("TOKEN", "")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.HTTPEnabled || cfg.HTTPAddr != ":9090" {
		t.Fatalf("unexpected HTTP address: %q", cfg.HTTPAddr)
	}

	if cfg.SummarizerTimeout != 120*time.Second {
		t.Fatalf("unexpected summarizer timeout: %s", cfg.SummarizerTimeout)
	}

	if cfg.FetchTimeout != 10*time.Second {
		t.Fatalf("unexpected fetch timeout: %s", cfg.FetchTimeout)
	}

	if cfg.QAModel != "gemini-2.0-flash" {
		t.Fatalf("unexpected model: %q", cfg.QAModel)
	}

	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session TTL: %s", cfg.SessionTTL)
	}
}

func TestParseAllowedUsers(t *testing.T) {
	t.Setenv("TOKEN", "bot-token")
	t.Setenv("ALLOWED_USERS", "1,22,333")
	t.Setenv("SUMMARIZER_URL", "https://backend.example")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.AllowedUsers) != 3 || cfg.AllowedUsers[2] != 333 {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}

	if cfg.SummarizerURL != "https://backend.example" {
		t.Fatalf("unexpected summarizer URL: %q", cfg.SummarizerURL)
	}
}

func TestParseRequiresFrontend(t *testing.T) {
	t.Setenv("TOKEN", "")
	t.Setenv("HTTP_ENABLED", "false")

	if _, err := config.Parse(); !errors.Is(err, config.ErrNoFrontend) {
		t.Fatalf("expected ErrNoFrontend, got %v", err)
	}
}

func TestParseRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("TOKEN", "")
	t.Setenv("QA_TIMEOUT", "0s")

	if _, err := config.Parse(); err == nil {
		t.Fatalf("expected an error for a zero timeout")
	}
}
