package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"maru/internal/logging"
	"maru/internal/models"
)

// AssistantService runs the full request pipeline: parse the text into an
// action plan, execute the actions in order, synthesize one reply, and
// record the exchange in the session.
type AssistantService struct {
	parser       *ParserService
	executor     *Executor
	synthesizer  *Synthesizer
	sessions     *SessionManager
	metrics      *Metrics
	historyLimit int
}

// NewAssistantService wires the pipeline components together
func NewAssistantService(
	parser *ParserService,
	executor *Executor,
	synthesizer *Synthesizer,
	sessions *SessionManager,
	metrics *Metrics,
	historyLimit int,
) *AssistantService {
	return &AssistantService{
		parser:       parser,
		executor:     executor,
		synthesizer:  synthesizer,
		sessions:     sessions,
		metrics:      metrics,
		historyLimit: historyLimit,
	}
}

// Process handles one inbound request. sessionID may be empty: a new
// session id is minted so the caller can continue the conversation.
func (s *AssistantService) Process(ctx context.Context, text, sessionID string) models.AssistantResponse {
	started := time.Now()
	if s.metrics != nil {
		s.metrics.AssistantRequests.Inc()
		defer func() {
			s.metrics.RequestLatency.Observe(time.Since(started).Seconds())
		}()
	}

	requestID := uuid.New().String()
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	logger := logging.WithRequest(requestID, sessionID)
	s.sessions.GetOrCreateSession(ctx, sessionID)

	// Pull history before recording this turn so the synthesizer sees the
	// conversation as it stood when the user asked.
	history := s.sessions.RecentContext(ctx, sessionID, s.historyLimit)

	parsed := s.parser.Parse(ctx, text)
	if len(parsed.Actions) == 1 && parsed.Actions[0].Intent == models.IntentUnknown && s.metrics != nil {
		s.metrics.ParseFallbacks.Inc()
	}
	log.Printf("🧭 [ASSISTANT] Parsed %d action(s) for session %s", len(parsed.Actions), sessionID)

	results, _ := s.executor.Execute(ctx, parsed)
	for i, r := range results {
		logging.WithAction(logger, i+1, parsed.Actions[i].Intent, parsed.Actions[i].Capability).
			Debug("action executed", "status", r.Status)
	}

	reply := s.synthesizer.Synthesize(ctx, results, parsed, history)

	response := models.AssistantResponse{
		Response:    reply,
		ActionCount: len(results),
		Actions:     make([]models.ActionSummary, 0, len(results)),
		Status:      models.ActionStatusOK,
		SessionID:   sessionID,
	}

	intents := make([]string, 0, len(results))
	allFailed := true
	for i, r := range results {
		response.Actions = append(response.Actions, models.ActionSummary{
			Intent:     parsed.Actions[i].Intent,
			Capability: parsed.Actions[i].Capability,
			Status:     r.Status,
		})
		intents = append(intents, parsed.Actions[i].Intent)
		if r.Status == models.ActionStatusOK {
			allFailed = false
		}
	}
	if allFailed {
		response.Status = models.ActionStatusError
	}

	s.sessions.RecordExchange(ctx, sessionID, text, reply, map[string]any{
		"intents":      intents,
		"action_count": len(results),
	})

	logger.Info("request processed",
		"actions", len(results),
		"status", response.Status,
		"duration_ms", time.Since(started).Milliseconds())

	return response
}
