package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"maru/internal/models"
	"maru/internal/services"
)

// SessionHandler handles session inspection and deletion
type SessionHandler struct {
	sessions *services.SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get returns session metadata plus one page of messages
// GET /sessions/:id?page&page_size
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}

	session := h.sessions.GetSession(c.Context(), sessionID)
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	page := c.QueryInt("page", 0)
	pageSize := c.QueryInt("page_size", 20)
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	messages := h.sessions.Messages(c.Context(), sessionID, page, pageSize)

	return c.JSON(models.SessionDetailResponse{
		Session:  session,
		Messages: messages,
		Page:     page,
		PageSize: pageSize,
	})
}

// Delete removes a session and its history
// DELETE /sessions/:id
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}

	if !h.sessions.DeleteSession(c.Context(), sessionID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	log.Printf("🗑️  [SESSION] Deleted session %s", sessionID)
	return c.JSON(fiber.Map{"deleted": true})
}

// Stats returns aggregate session counters
// GET /sessions-stats
func (h *SessionHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(models.SessionStatsResponse{
		ActiveSessions: h.sessions.GetActiveSessionCount(c.Context()),
		TotalMessages:  h.sessions.GetTotalMessageCount(c.Context()),
	})
}
