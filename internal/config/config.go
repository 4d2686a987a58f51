package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Port        string
	DatabasePath string // SQLite file path (":memory:" allowed for tests)

	// LLM provider (OpenAI-compatible chat completions endpoint)
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// Parser prompt template
	ParserPromptPath string

	// Web capability
	SearXNGURL   string
	WorkspaceDir string // root for the file listing capability

	// Session lifecycle
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	HistoryLimit    int // recent messages supplied to the synthesizer

	// Optional intent map override file (YAML)
	IntentMapPath string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3001"),
		DatabasePath: getEnv("DATABASE_PATH", "data/sessions.db"),

		LLMBaseURL: strings.TrimSuffix(getEnv("LLM_BASE_URL", "https://api.openai.com/v1"), "/"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),

		ParserPromptPath: getEnv("PARSER_PROMPT_PATH", "prompts/parser.txt"),

		SearXNGURL:   strings.TrimSuffix(getEnv("SEARXNG_URL", "http://localhost:8080"), "/"),
		WorkspaceDir: getEnv("WORKSPACE_DIR", "data/workspace"),

		SessionTTL:      getDurationEnv("SESSION_TTL", 7*24*time.Hour),
		CleanupInterval: getDurationEnv("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		HistoryLimit:    getIntEnv("HISTORY_LIMIT", 10),

		IntentMapPath: getEnv("INTENT_MAP_PATH", ""),
	}
}

// IntentMap maps intent names to capability names. The router falls back to
// the fallback capability for anything not listed.
type IntentMap map[string]string

// DefaultIntentMap covers every intent the parser prompt can emit.
func DefaultIntentMap() IntentMap {
	return IntentMap{
		"write_note":    "notes",
		"list_notes":    "notes",
		"calendar_add":  "calendar",
		"calendar_list": "calendar",
		"web_search":    "web",
		"web_fetch":     "web",
		"list_files":    "files",
		"read_file":     "files",
		"unknown":       "fallback",
	}
}

// LoadIntentMap loads an intent→capability table from a YAML file, merged
// over the built-in defaults so a partial file only overrides what it names.
func LoadIntentMap(filePath string) (IntentMap, error) {
	m := DefaultIntentMap()
	if filePath == "" {
		return m, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent map file: %w", err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse intent map YAML: %w", err)
	}

	for intent, capability := range overrides {
		m[intent] = capability
	}
	return m, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
