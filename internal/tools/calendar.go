package tools

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"maru/internal/database"
	"maru/internal/models"
)

// CalendarHandler stores and lists schedule entries in the application
// database. Dates are stored as given by the planner (YYYY-MM-DD expected
// but not enforced) so partial natural-language dates still round-trip.
type CalendarHandler struct {
	db *database.DB
}

// NewCalendarHandler creates the calendar capability handler
func NewCalendarHandler(db *database.DB) *CalendarHandler {
	return &CalendarHandler{db: db}
}

// Name implements Handler
func (h *CalendarHandler) Name() string { return "calendar" }

// Event is the payload shape returned for schedule entries
type Event struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Handle implements Handler
func (h *CalendarHandler) Handle(ctx context.Context, action string, params map[string]any) models.ActionResult {
	switch action {
	case "calendar_add":
		return h.addEvent(ctx, params)
	case "calendar_list":
		return h.listEvents(ctx, params)
	default:
		return errorResult(fmt.Sprintf("일정 기능이 지원하지 않는 동작입니다: %s", action))
	}
}

func (h *CalendarHandler) addEvent(ctx context.Context, params map[string]any) models.ActionResult {
	title := stringParam(params, "title")
	if title == "" {
		title = stringParam(params, "text")
	}
	if title == "" {
		return errorResult("일정 제목이 없습니다")
	}

	date := stringParam(params, "date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	eventTime := stringParam(params, "time")

	now := time.Now()
	res, err := h.db.ExecContext(ctx,
		"INSERT INTO events (title, event_date, event_time, created_at) VALUES (?, ?, ?, ?)",
		title, date, eventTime, now.Format(time.RFC3339))
	if err != nil {
		log.Printf("❌ [CALENDAR] Failed to add event: %v", err)
		return errorResult("일정 추가에 실패했습니다")
	}

	id, _ := res.LastInsertId()
	event := Event{ID: id, Title: title, Date: date, Time: eventTime, CreatedAt: now.Format(time.RFC3339)}
	return okResult(event, fmt.Sprintf("%s 일정을 추가했습니다", date))
}

func (h *CalendarHandler) listEvents(ctx context.Context, params map[string]any) models.ActionResult {
	date := stringParam(params, "date")

	var (
		rows *sql.Rows
		err  error
	)
	if date != "" {
		rows, err = h.db.QueryContext(ctx,
			"SELECT id, title, event_date, event_time, created_at FROM events WHERE event_date = ? ORDER BY event_time, id",
			date)
	} else {
		rows, err = h.db.QueryContext(ctx,
			"SELECT id, title, event_date, event_time, created_at FROM events ORDER BY event_date, event_time LIMIT 20")
	}
	if err != nil {
		log.Printf("❌ [CALENDAR] Failed to list events: %v", err)
		return errorResult("일정 조회에 실패했습니다")
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.CreatedAt); err != nil {
			continue
		}
		events = append(events, e)
	}

	return okResult(events, fmt.Sprintf("일정 %d건을 찾았습니다", len(events)))
}
