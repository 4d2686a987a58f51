package services

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"maru/internal/models"
)

// fallbackParserPrompt is used when no template file is configured or the
// configured file cannot be read.
const fallbackParserPrompt = `You are a planner for a Korean personal assistant. Split the user request into an ordered list of actions.

Return ONLY a JSON object of this exact shape, no prose:
{"actions":[{"intent":"...","capability":"...","parameters":{},"depends_on":[]}]}

Valid intents: write_note, list_notes, calendar_add, calendar_list, web_search, web_fetch, list_files, read_file, unknown
Valid capabilities: notes, calendar, web, files, fallback
Parameter keys: text, title, query, url, date, time, path

Rules:
- Keep actions in the order they must execute.
- depends_on lists 1-based indices of earlier actions whose output this action needs.
- If the request cannot be mapped, return a single action with intent "unknown" and capability "fallback".

User request: {input_text}`

// ParserService turns free text into an ordered action plan with one LLM
// call. parse never returns an error: every failure mode degrades to a
// single fallback action.
type ParserService struct {
	completer  Completer
	promptPath string

	mu       sync.RWMutex
	template string

	watcher *fsnotify.Watcher
}

// NewParserService creates the request parser. promptPath may be empty to
// use the built-in template.
func NewParserService(completer Completer, promptPath string) *ParserService {
	p := &ParserService{
		completer:  completer,
		promptPath: promptPath,
		template:   fallbackParserPrompt,
	}
	p.loadTemplate()
	return p
}

// loadTemplate reads the prompt template from disk, keeping whatever was
// loaded before (or the built-in) when the file is unreadable.
func (p *ParserService) loadTemplate() {
	if p.promptPath == "" {
		return
	}
	data, err := os.ReadFile(p.promptPath)
	if err != nil {
		log.Printf("⚠️  [PARSER] Prompt template not readable (%v), using built-in", err)
		return
	}
	p.mu.Lock()
	p.template = string(data)
	p.mu.Unlock()
	log.Printf("✅ [PARSER] Prompt template loaded from %s", p.promptPath)
}

// WatchTemplate reloads the prompt template whenever the file changes.
// Stop the watcher with Close on shutdown.
func (p *ParserService) WatchTemplate() error {
	if p.promptPath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(p.promptPath)); err != nil {
		watcher.Close()
		return err
	}
	p.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(p.promptPath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					log.Printf("🔄 [PARSER] Prompt template changed, reloading")
					p.loadTemplate()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️  [PARSER] Template watcher error: %v", err)
			}
		}
	}()

	log.Printf("👀 [PARSER] Watching prompt template: %s", p.promptPath)
	return nil
}

// Close stops the template watcher if one is running
func (p *ParserService) Close() {
	if p.watcher != nil {
		p.watcher.Close()
	}
}

// rawAction tolerates the two field spellings the model produces:
// "capability" (current prompt) and "agent" (older prompts), plus
// "parameters" and "params".
type rawAction struct {
	Intent     string         `json:"intent"`
	Capability string         `json:"capability"`
	Agent      string         `json:"agent"`
	Parameters map[string]any `json:"parameters"`
	Params     map[string]any `json:"params"`
	DependsOn  []int          `json:"depends_on"`
}

type rawPlan struct {
	Actions []rawAction `json:"actions"`
}

// Parse turns raw user text into a ParsedRequest. The returned request
// always carries at least one action.
func (p *ParserService) Parse(ctx context.Context, text string) models.ParsedRequest {
	p.mu.RLock()
	prompt := strings.ReplaceAll(p.template, "{input_text}", text)
	p.mu.RUnlock()

	completion, err := p.completer.Complete(ctx,
		"You are a helpful assistant that extracts structured data from text.",
		[]models.ChatTurn{{Role: models.RoleUser, Content: prompt}},
		0.3, 1000)
	if err != nil {
		log.Printf("❌ [PARSER] Completion failed: %v", err)
		return fallbackRequest(text, err.Error())
	}

	var plan rawPlan
	if err := json.Unmarshal([]byte(stripCodeFences(completion)), &plan); err != nil {
		log.Printf("❌ [PARSER] Malformed plan JSON: %v", err)
		return fallbackRequest(text, "")
	}

	actions := make([]models.Action, 0, len(plan.Actions))
	for _, raw := range plan.Actions {
		action := models.Action{
			Intent:     raw.Intent,
			Capability: raw.Capability,
			Parameters: raw.Parameters,
			DependsOn:  raw.DependsOn,
		}
		if action.Intent == "" {
			action.Intent = models.IntentUnknown
		}
		if action.Capability == "" {
			action.Capability = raw.Agent
		}
		if action.Capability == "" {
			action.Capability = models.CapabilityFallback
		}
		if action.Parameters == nil {
			action.Parameters = raw.Params
		}
		if action.Parameters == nil {
			action.Parameters = map[string]any{}
		}
		actions = append(actions, action)
	}

	if len(actions) == 0 {
		log.Printf("⚠️  [PARSER] Plan had no actions, substituting fallback")
		return fallbackRequest(text, "")
	}

	return models.ParsedRequest{Actions: actions, RawText: text}
}

// fallbackRequest builds the single-action degraded plan. errMsg is only
// attached for completion failures so malformed model output never
// reaches the user.
func fallbackRequest(text, errMsg string) models.ParsedRequest {
	params := map[string]any{}
	if errMsg != "" {
		params["error"] = errMsg
	}
	return models.ParsedRequest{
		Actions: []models.Action{{
			Intent:     models.IntentUnknown,
			Capability: models.CapabilityFallback,
			Parameters: params,
		}},
		RawText: text,
	}
}

// stripCodeFences removes a Markdown code fence wrapper if the model added
// one around the JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
