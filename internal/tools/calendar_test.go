package tools

import (
	"context"
	"testing"

	"maru/internal/models"
)

func TestCalendarAddAndList(t *testing.T) {
	handler := NewCalendarHandler(newTestDB(t))
	ctx := context.Background()

	result := handler.Handle(ctx, "calendar_add", map[string]any{
		"title": "치과 예약",
		"date":  "2026-09-03",
		"time":  "14:00",
	})
	if result.Status != models.ActionStatusOK {
		t.Fatalf("calendar_add failed: %s", result.Message)
	}
	event := result.Result.(Event)
	if event.Title != "치과 예약" || event.Date != "2026-09-03" || event.Time != "14:00" {
		t.Errorf("Unexpected event: %+v", event)
	}

	result = handler.Handle(ctx, "calendar_list", map[string]any{"date": "2026-09-03"})
	if result.Status != models.ActionStatusOK {
		t.Fatalf("calendar_list failed: %s", result.Message)
	}
	events := result.Result.([]Event)
	if len(events) != 1 || events[0].Title != "치과 예약" {
		t.Errorf("Unexpected listing: %+v", events)
	}

	// filtering by another date finds nothing
	result = handler.Handle(ctx, "calendar_list", map[string]any{"date": "2026-09-04"})
	if events := result.Result.([]Event); len(events) != 0 {
		t.Errorf("Expected no events for another date, got %+v", events)
	}
}

func TestCalendarAddDefaultsDate(t *testing.T) {
	handler := NewCalendarHandler(newTestDB(t))

	result := handler.Handle(context.Background(), "calendar_add", map[string]any{"title": "회의"})
	if result.Status != models.ActionStatusOK {
		t.Fatalf("calendar_add failed: %s", result.Message)
	}
	if result.Result.(Event).Date == "" {
		t.Error("Missing date should default to today")
	}
}

func TestCalendarAddRequiresTitle(t *testing.T) {
	handler := NewCalendarHandler(newTestDB(t))

	result := handler.Handle(context.Background(), "calendar_add", map[string]any{"date": "2026-09-03"})
	if result.Status != models.ActionStatusError {
		t.Errorf("Missing title should fail, got %+v", result)
	}
}
