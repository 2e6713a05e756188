package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles liveness requests
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Handle always answers 200; store reachability lives on /api/db-status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok": true,
	})
}
