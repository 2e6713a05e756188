package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"sessionlink/internal/models"
	"sessionlink/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SessionHandler handles ingest, listing and store status routes
type SessionHandler struct {
	repo       services.SessionRepository
	database   string
	collection string
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(repo services.SessionRepository, database, collection string) *SessionHandler {
	return &SessionHandler{
		repo:       repo,
		database:   database,
		collection: collection,
	}
}

// Create stores the request body as a raw session document
// POST /api/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var doc bson.M
	if err := c.BodyParser(&doc); err != nil || doc == nil {
		return badRequest(c, "Request body must be a JSON object")
	}

	insertedID, err := h.repo.Insert(c.UserContext(), doc)
	if err != nil {
		log.Printf("❌ [SESSIONS] Failed to store session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to store session",
		})
	}

	log.Printf("✅ [SESSIONS] Stored session %v", insertedID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "Session stored",
		"insertedId": insertedID,
	})
}

// List returns normalized sessions, newest first
// GET /api/sessions?limit=50&skip=0
func (h *SessionHandler) List(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", defaultListLimit)
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	skip := queryInt(c, "skip", 0)

	docs, err := h.repo.List(c.UserContext(), int64(limit), int64(skip))
	if err != nil {
		log.Printf("❌ [SESSIONS] Failed to list sessions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load sessions",
		})
	}

	records := make([]*models.SessionRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, services.NormalizeSession(doc))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(records),
		"data":    records,
	})
}

// DBStatus pings the store and reports the document count
// GET /api/db-status
func (h *SessionHandler) DBStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	count, err := h.status(ctx)
	if err != nil {
		log.Printf("⚠️  [DB-STATUS] Store check failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Database unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status":        "connected",
		"database":      h.database,
		"collection":    h.collection,
		"sessionsCount": count,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *SessionHandler) status(ctx context.Context) (int64, error) {
	if err := h.repo.Ping(ctx); err != nil {
		return 0, err
	}
	return h.repo.Count(ctx)
}

// Banner answers GET / when no static viewer is mounted
func Banner(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Experiment session API",
		"status":    "running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
