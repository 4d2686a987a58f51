package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"maru/internal/database"
	"maru/internal/models"
	"maru/internal/services"
)

func newSessionApp(t *testing.T) (*fiber.App, *services.SessionManager) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	sessions := services.NewSessionManager(services.NewSessionStore(db), 7*24*time.Hour)
	handler := NewSessionHandler(sessions)

	app := fiber.New()
	app.Get("/sessions/:id", handler.Get)
	app.Delete("/sessions/:id", handler.Delete)
	app.Get("/sessions-stats", handler.Stats)
	return app, sessions
}

func TestGetSessionNotFound(t *testing.T) {
	app, _ := newSessionApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/sessions/missing", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestGetSessionWithMessages(t *testing.T) {
	app, sessions := newSessionApp(t)
	ctx := context.Background()

	sessions.GetOrCreateSession(ctx, "s1")
	sessions.RecordExchange(ctx, "s1", "안녕", "안녕하세요", nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/sessions/s1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body models.SessionDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Session == nil || body.Session.SessionID != "s1" {
		t.Errorf("Unexpected session payload: %+v", body.Session)
	}
	if len(body.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(body.Messages))
	}
	if body.PageSize != 20 {
		t.Errorf("Default page size should be 20, got %d", body.PageSize)
	}
}

func TestGetSessionClampsPaging(t *testing.T) {
	app, sessions := newSessionApp(t)
	sessions.GetOrCreateSession(context.Background(), "s1")

	resp, err := app.Test(httptest.NewRequest("GET", "/sessions/s1?page=-3&page_size=9999", nil))
	if err != nil {
		t.Fatal(err)
	}

	var body models.SessionDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Page != 0 {
		t.Errorf("Negative page should clamp to 0, got %d", body.Page)
	}
	if body.PageSize != 20 {
		t.Errorf("Oversized page_size should fall back to 20, got %d", body.PageSize)
	}
}

func TestDeleteSession(t *testing.T) {
	app, sessions := newSessionApp(t)
	sessions.GetOrCreateSession(context.Background(), "s1")

	resp, err := app.Test(httptest.NewRequest("DELETE", "/sessions/s1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("DELETE", "/sessions/s1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Second delete should 404, got %d", resp.StatusCode)
	}
}

func TestSessionStats(t *testing.T) {
	app, sessions := newSessionApp(t)
	ctx := context.Background()

	sessions.GetOrCreateSession(ctx, "a")
	sessions.GetOrCreateSession(ctx, "b")
	sessions.RecordExchange(ctx, "a", "x", "y", nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/sessions-stats", nil))
	if err != nil {
		t.Fatal(err)
	}

	var body models.SessionStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.ActiveSessions != 2 {
		t.Errorf("Expected 2 active sessions, got %d", body.ActiveSessions)
	}
	if body.TotalMessages != 2 {
		t.Errorf("Expected 2 messages, got %d", body.TotalMessages)
	}
}
