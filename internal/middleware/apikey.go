package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"
)

// IngestAPIKeyMiddleware guards the record ingest route with a shared X-API-Key.
// An empty expected key leaves the route open, matching a local deployment
// without INGEST_API_KEY.
func IngestAPIKeyMiddleware(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" {
			return c.Next()
		}

		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Missing API key. Include X-API-Key header.",
			})
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			log.Printf("❌ [APIKEY-AUTH] Invalid ingest key attempt from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid API key",
			})
		}

		c.Locals("auth_type", "api_key")
		return c.Next()
	}
}
