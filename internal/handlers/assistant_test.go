package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"maru/internal/config"
	"maru/internal/models"
	"maru/internal/services"
	"maru/internal/tools"
)

type scriptedCompleter struct {
	response string
}

func (s *scriptedCompleter) Complete(ctx context.Context, systemPrompt string, turns []models.ChatTurn, temperature float64, maxTokens int) (string, error) {
	return s.response, nil
}

type fixedHandler struct {
	name   string
	result models.ActionResult
}

func (h *fixedHandler) Name() string { return h.name }
func (h *fixedHandler) Handle(ctx context.Context, action string, params map[string]any) models.ActionResult {
	return h.result
}

func newAssistantApp(t *testing.T, plan, reply string) *fiber.App {
	t.Helper()

	registry := tools.NewRegistry()
	for _, h := range []*fixedHandler{
		{name: models.CapabilityFallback, result: models.ActionResult{Status: models.ActionStatusError, Message: "요청을 이해하지 못했습니다"}},
		{name: "notes", result: models.ActionResult{Status: models.ActionStatusOK, Message: "저장"}},
	} {
		if err := registry.Register(h); err != nil {
			t.Fatal(err)
		}
	}

	_, sessions := newSessionApp(t)

	assistant := services.NewAssistantService(
		services.NewParserService(&scriptedCompleter{response: plan}, ""),
		services.NewExecutor(services.NewRouter(config.DefaultIntentMap(), registry), nil),
		services.NewSynthesizer(&scriptedCompleter{response: reply}),
		sessions,
		nil,
		10,
	)

	app := fiber.New()
	app.Post("/assistant", NewAssistantHandler(assistant).Process)
	return app
}

func TestAssistantProcess(t *testing.T) {
	plan := `{"actions":[{"intent":"write_note","capability":"notes","parameters":{"text":"우유"}}]}`
	app := newAssistantApp(t, plan, "메모했어요")

	body, _ := json.Marshal(models.AssistantRequest{Text: "우유 메모해줘"})
	req := httptest.NewRequest("POST", "/assistant", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var got models.AssistantResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Response != "메모했어요" {
		t.Errorf("Unexpected reply: %s", got.Response)
	}
	if got.SessionID == "" {
		t.Error("Response should carry a session id")
	}
	if got.ActionCount != 1 || got.Actions[0].Intent != "write_note" {
		t.Errorf("Unexpected actions: %+v", got.Actions)
	}
}

func TestAssistantRejectsEmptyText(t *testing.T) {
	app := newAssistantApp(t, `{"actions":[]}`, "unused")

	for _, body := range []string{`{}`, `{"text":"   "}`} {
		req := httptest.NewRequest("POST", "/assistant", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("Body %s should 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestAssistantRejectsBadBody(t *testing.T) {
	app := newAssistantApp(t, `{"actions":[]}`, "unused")

	req := httptest.NewRequest("POST", "/assistant", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Malformed body should 400, got %d", resp.StatusCode)
	}
}
