package handlers

import (
	"errors"
	"log"

	"sessionlink/internal/logging"
	"sessionlink/internal/services"
	"sessionlink/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ExperimentHandler serves session records to external link holders
type ExperimentHandler struct {
	lookup *services.SessionLookupService
}

// NewExperimentHandler creates a new experiment handler
func NewExperimentHandler(lookup *services.SessionLookupService) *ExperimentHandler {
	return &ExperimentHandler{lookup: lookup}
}

// GetExternal returns one normalized session record
// GET /api/experiments/external/:id
// A valid bearer link token overrides the path id; any other token is ignored.
func (h *ExperimentHandler) GetExternal(c *fiber.Ctx) error {
	// Absent or malformed headers simply mean "no token"
	token, _ := auth.ExtractToken(c.Get("Authorization"))

	// Params aliases the request buffer; the id may outlive it as a cache key
	id := utils.CopyString(c.Params("id"))

	record, err := h.lookup.Lookup(c.UserContext(), id, token)
	if err != nil {
		var storageErr *services.StorageError
		switch {
		case errors.Is(err, services.ErrMissingIdentifier):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Session id is required",
			})
		case errors.Is(err, services.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Session not found",
			})
		case errors.As(err, &storageErr):
			logging.WithRequest(requestID(c), c.Route().Path).Error("session lookup failed", "error", err)
		default:
			log.Printf("❌ [EXTERNAL] Unexpected lookup error: %v", err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load session",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// requestID returns the id set by the requestid middleware, if any
func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
