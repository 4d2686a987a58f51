package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Default port should be 3001, got %s", cfg.Port)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("Default session TTL should be 7 days, got %v", cfg.SessionTTL)
	}
	if cfg.CleanupInterval != 10*time.Minute {
		t.Errorf("Default cleanup interval should be 10 minutes, got %v", cfg.CleanupInterval)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("Default history limit should be 10, got %d", cfg.HistoryLimit)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("HISTORY_LIMIT", "4")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1/")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("PORT override ignored, got %s", cfg.Port)
	}
	if cfg.SessionTTL != 48*time.Hour {
		t.Errorf("SESSION_TTL override ignored, got %v", cfg.SessionTTL)
	}
	if cfg.HistoryLimit != 4 {
		t.Errorf("HISTORY_LIMIT override ignored, got %d", cfg.HistoryLimit)
	}
	if cfg.LLMBaseURL != "http://localhost:11434/v1" {
		t.Errorf("Base URL should drop its trailing slash, got %s", cfg.LLMBaseURL)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("SESSION_TTL", "tomorrow")
	t.Setenv("HISTORY_LIMIT", "lots")

	cfg := Load()

	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("Malformed duration should fall back to default, got %v", cfg.SessionTTL)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("Malformed int should fall back to default, got %d", cfg.HistoryLimit)
	}
}

func TestDefaultIntentMapIsTotalOverKnownIntents(t *testing.T) {
	m := DefaultIntentMap()

	for intent, capability := range map[string]string{
		"write_note":    "notes",
		"calendar_list": "calendar",
		"web_search":    "web",
		"read_file":     "files",
		"unknown":       "fallback",
	} {
		if m[intent] != capability {
			t.Errorf("Intent %s should map to %s, got %s", intent, capability, m[intent])
		}
	}
}

func TestLoadIntentMapMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.yaml")
	if err := os.WriteFile(path, []byte("web_search: fast_web\nnew_intent: notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadIntentMap(path)
	if err != nil {
		t.Fatal(err)
	}

	if m["web_search"] != "fast_web" {
		t.Errorf("Override should replace the default, got %s", m["web_search"])
	}
	if m["new_intent"] != "notes" {
		t.Errorf("New intents should be added, got %s", m["new_intent"])
	}
	if m["write_note"] != "notes" {
		t.Errorf("Untouched defaults should survive the merge, got %s", m["write_note"])
	}
}

func TestLoadIntentMapEmptyPath(t *testing.T) {
	m, err := LoadIntentMap("")
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != len(DefaultIntentMap()) {
		t.Errorf("Empty path should return the defaults, got %v", m)
	}
}

func TestLoadIntentMapMissingFile(t *testing.T) {
	if _, err := LoadIntentMap("/no/such/file.yaml"); err == nil {
		t.Error("Missing override file should be an error")
	}
}
