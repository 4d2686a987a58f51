package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"maru/internal/models"
	"maru/internal/services"
)

// AssistantHandler handles natural-language assistant requests
type AssistantHandler struct {
	assistant *services.AssistantService
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistant *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Process handles a natural-language request
// POST /assistant
func (h *AssistantHandler) Process(c *fiber.Ctx) error {
	var req models.AssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	log.Printf("💬 [ASSISTANT] Request (session: %s): %s", orNone(req.SessionID), truncateForLog(req.Text, 80))

	response := h.assistant.Process(c.Context(), req.Text, req.SessionID)
	return c.JSON(response)
}

func orNone(s string) string {
	if s == "" {
		return "new"
	}
	return s
}

func truncateForLog(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
