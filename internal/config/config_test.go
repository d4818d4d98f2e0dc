package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshCron != "0 0 * * *" {
		t.Errorf("RefreshCron = %q, want midnight", cfg.RefreshCron)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := st.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Locale != "da" || again.Illustration.FallbackPath != "assets/dog.png" {
		t.Errorf("reloaded config lost defaults: %+v", again)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
locale: fr
calendars:
  - url: https://example.com/a.ics
    name: Family
illustration:
  mode: bogus
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Locale != "da" {
		t.Errorf("Locale = %q, want fallback da", cfg.Locale)
	}
	if cfg.Illustration.Mode != "events" {
		t.Errorf("Mode = %q, want events", cfg.Illustration.Mode)
	}
	if len(cfg.Calendars) != 1 {
		t.Fatalf("calendars = %d", len(cfg.Calendars))
	}
	cal := cfg.Calendars[0]
	if cal.ID != "Family" || cal.Symbol != "●" {
		t.Errorf("calendar not normalized: %+v", cal)
	}
	if len(cfg.FunFact.Models) != 3 {
		t.Errorf("fun fact models = %v", cfg.FunFact.Models)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CALENDAR_IMAGE_PATH":    "/srv/cal.bmp",
		"SECONDARY_ILLUSTRATION": "False",
		"OPENROUTER_API_KEY":     "sk-or-123",
		"WEATHER_LATITUDE":       "56.15",
		"CALENDAR_1_URL":         "https://example.com/one.ics",
		"CALENDAR_1_SYMBOL":      "★",
		"CALENDAR_2_URL":         "https://example.com/two.ics",
		"CALENDAR_2_NAME":        "Work",
		"CALENDAR_4_URL":         "https://example.com/ignored.ics",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv(lookup)

	if cfg.OutputPath != "/srv/cal.bmp" {
		t.Errorf("OutputPath = %q", cfg.OutputPath)
	}
	if cfg.Illustration.Secondary {
		t.Error("secondary illustration should be disabled")
	}
	if cfg.FunFact.APIKey != "sk-or-123" {
		t.Errorf("APIKey = %q", cfg.FunFact.APIKey)
	}
	if cfg.Weather.Latitude != 56.15 {
		t.Errorf("Latitude = %v", cfg.Weather.Latitude)
	}
	if len(cfg.Calendars) != 2 {
		t.Fatalf("calendars = %+v", cfg.Calendars)
	}
	if cfg.Calendars[0].Symbol != "★" || cfg.Calendars[0].Name != "Calendar 1" {
		t.Errorf("calendar 1 = %+v", cfg.Calendars[0])
	}
	if cfg.Calendars[1].Symbol != "●" || cfg.Calendars[1].ID != "Work" {
		t.Errorf("calendar 2 = %+v", cfg.Calendars[1])
	}
}

func TestSecondaryStaysOnUnlessExplicitFalse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) (string, bool) {
		if k == "SECONDARY_ILLUSTRATION" {
			return "false", true
		}
		return "", false
	})
	if !cfg.Illustration.Secondary {
		t.Error(`only "False" disables the secondary illustration`)
	}
}
