package handlers

import (
	"github.com/gofiber/fiber/v2"

	"maru/internal/health"
)

// HealthHandler reports liveness and backend dependency health
type HealthHandler struct {
	checks *health.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checks *health.Service) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Live is the bare liveness probe
// GET /
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": "0.1.0",
	})
}

// Health probes every backend dependency and reports per-dependency state.
// Returns 503 when any dependency is unhealthy so load balancers can react.
// GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	deps := h.checks.CheckAll(c.Context())
	overall := h.checks.Overall()

	status := fiber.StatusOK
	if overall == health.StatusUnhealthy {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":       overall,
		"version":      "0.1.0",
		"dependencies": deps,
	})
}
