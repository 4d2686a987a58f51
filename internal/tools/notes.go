package tools

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"maru/internal/database"
	"maru/internal/models"
)

// NotesHandler stores and lists notes in the application database.
type NotesHandler struct {
	db *database.DB
}

// NewNotesHandler creates the notes capability handler
func NewNotesHandler(db *database.DB) *NotesHandler {
	return &NotesHandler{db: db}
}

// Name implements Handler
func (h *NotesHandler) Name() string { return "notes" }

// Note is the payload shape returned for stored notes
type Note struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Handle implements Handler
func (h *NotesHandler) Handle(ctx context.Context, action string, params map[string]any) models.ActionResult {
	switch action {
	case "write_note":
		return h.writeNote(ctx, params)
	case "list_notes":
		return h.listNotes(ctx)
	default:
		return errorResult(fmt.Sprintf("메모 기능이 지원하지 않는 동작입니다: %s", action))
	}
}

func (h *NotesHandler) writeNote(ctx context.Context, params map[string]any) models.ActionResult {
	content := stringParam(params, "text")
	if content == "" {
		content = stringParam(params, "content")
	}
	if content == "" {
		return errorResult("메모할 내용이 없습니다")
	}

	// Later actions can reference earlier output: append prior result
	// summaries to the note body when the planner chained this action.
	if prior := priorSummaries(params); prior != "" {
		content = content + "\n\n" + prior
	}

	title := stringParam(params, "title")
	if title == "" {
		title = firstLine(content, 50)
	}

	now := time.Now()
	res, err := h.db.ExecContext(ctx,
		"INSERT INTO notes (title, content, created_at) VALUES (?, ?, ?)",
		title, content, now.Format(time.RFC3339))
	if err != nil {
		log.Printf("❌ [NOTES] Failed to save note: %v", err)
		return errorResult("메모 저장에 실패했습니다")
	}

	id, _ := res.LastInsertId()
	note := Note{ID: id, Title: title, Content: content, CreatedAt: now.Format(time.RFC3339)}
	return okResult(note, "메모를 저장했습니다")
}

func (h *NotesHandler) listNotes(ctx context.Context) models.ActionResult {
	rows, err := h.db.QueryContext(ctx,
		"SELECT id, title, content, created_at FROM notes ORDER BY created_at DESC LIMIT 20")
	if err != nil {
		log.Printf("❌ [NOTES] Failed to list notes: %v", err)
		return errorResult("메모 목록 조회에 실패했습니다")
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			continue
		}
		notes = append(notes, n)
	}

	return okResult(notes, fmt.Sprintf("메모 %d건을 찾았습니다", len(notes)))
}

// priorSummaries flattens previous_results entries into a readable block
// so chained actions (search → note) can embed what came before.
func priorSummaries(params map[string]any) string {
	raw, ok := params["previous_results"]
	if !ok {
		return ""
	}
	prior, ok := raw.([]models.PriorResult)
	if !ok || len(prior) == 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range prior {
		if p.Status != models.ActionStatusOK || p.Result == nil {
			continue
		}
		fmt.Fprintf(&b, "[%s] %v\n", p.Intent, p.Result)
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstLine(s string, max int) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
