package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.EmailProvider != "stub" {
		t.Errorf("expected default email provider stub, got %s", cfg.EmailProvider)
	}
	if cfg.SlotMatchTolerance != 10*time.Minute {
		t.Errorf("expected 10m slot match tolerance, got %s", cfg.SlotMatchTolerance)
	}
	if cfg.DefaultSlotDuration != time.Hour {
		t.Errorf("expected 1h default slot duration, got %s", cfg.DefaultSlotDuration)
	}
	if cfg.DayStartHour != 9 || cfg.DayEndHour != 17 {
		t.Errorf("expected 9-17 canonical day, got %d-%d", cfg.DayStartHour, cfg.DayEndHour)
	}
	if cfg.MaxBookingHorizonDays != 7 {
		t.Errorf("expected 7 day booking horizon, got %d", cfg.MaxBookingHorizonDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SLOT_MATCH_TOLERANCE", "5m")
	t.Setenv("WEBHOOK_RATE_LIMIT", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://doclinic.dev, https://admin.doclinic.dev")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port override, got %s", cfg.Port)
	}
	if cfg.SlotMatchTolerance != 5*time.Minute {
		t.Errorf("expected 5m tolerance, got %s", cfg.SlotMatchTolerance)
	}
	if cfg.WebhookRateLimit != 2.5 {
		t.Errorf("expected rate 2.5, got %f", cfg.WebhookRateLimit)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.doclinic.dev" {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Errorf("expected lowercased provider, got %s", cfg.EmailProvider)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DAY_START_HOUR", "not-a-number")
	t.Setenv("SLOT_MATCH_TOLERANCE", "bogus")

	cfg := Load()

	if cfg.DayStartHour != 9 {
		t.Errorf("expected fallback day start 9, got %d", cfg.DayStartHour)
	}
	if cfg.SlotMatchTolerance != 10*time.Minute {
		t.Errorf("expected fallback tolerance, got %s", cfg.SlotMatchTolerance)
	}
}
