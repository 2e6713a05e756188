package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"sessionlink/internal/services"
	"sessionlink/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

// LinkHandler issues signed external links
type LinkHandler struct {
	links      *auth.LinkAuth
	defaultTTL time.Duration
	metrics    *services.Metrics
}

// NewLinkHandler creates a new link handler. defaultTTL applies when expSec is omitted.
func NewLinkHandler(links *auth.LinkAuth, defaultTTL time.Duration) *LinkHandler {
	if defaultTTL <= 0 {
		defaultTTL = auth.DefaultLinkTTL
	}
	return &LinkHandler{
		links:      links,
		defaultTTL: defaultTTL,
	}
}

// SetMetrics attaches Prometheus collectors
func (h *LinkHandler) SetMetrics(metrics *services.Metrics) {
	h.metrics = metrics
}

// SignLinkRequest is the POST /api/links/sign body
type SignLinkRequest struct {
	SessionID auth.FlexString `json:"sessionId"`
	UserID    auth.FlexString `json:"userId"`
	ExpSec    interface{}     `json:"expSec"`
}

// Sign issues a token binding a session id to a short validity window
// POST /api/links/sign
func (h *LinkHandler) Sign(c *fiber.Ctx) error {
	// Unconfigured signing is reported before any input validation
	if !h.links.Enabled() {
		h.metrics.RecordLinkSignFailure("unavailable")
		return badRequest(c, "Link signing is not configured")
	}

	var req SignLinkRequest
	if err := c.BodyParser(&req); err != nil {
		h.metrics.RecordLinkSignFailure("invalid_request")
		return badRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(string(req.SessionID)) == "" {
		h.metrics.RecordLinkSignFailure("invalid_request")
		return badRequest(c, "sessionId is required")
	}

	ttl, err := auth.ParseTTLSeconds(req.ExpSec, h.defaultTTL)
	if err != nil {
		h.metrics.RecordLinkSignFailure("invalid_request")
		return badRequest(c, "expSec must be a positive whole number of seconds")
	}

	link, err := h.links.Sign(string(req.SessionID), string(req.UserID), ttl)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSigningUnavailable):
			h.metrics.RecordLinkSignFailure("unavailable")
			return badRequest(c, "Link signing is not configured")
		case errors.Is(err, auth.ErrInvalidLinkRequest):
			h.metrics.RecordLinkSignFailure("invalid_request")
			return badRequest(c, "expSec is out of range")
		}
		log.Printf("❌ [LINKS] Failed to sign link: %v", err)
		h.metrics.RecordLinkSignFailure("internal")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to sign link",
		})
	}

	h.metrics.RecordLinkIssued()

	return c.JSON(fiber.Map{
		"token":     link.Token,
		"expiresIn": link.ExpiresIn,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
