package middleware

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP)
	GlobalAPIMax        int
	GlobalAPIExpiration time.Duration

	// External record lookups (per IP)
	PublicReadMax        int
	PublicReadExpiration time.Duration

	// Link issuance (per IP)
	SignMax        int
	SignExpiration time.Duration

	// Shared counter storage; nil keeps counters in process memory
	Storage fiber.Storage
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min = ~3.3 req/sec
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Viewer page loads: 120/min = 2 req/sec
		PublicReadMax:        120,
		PublicReadExpiration: 1 * time.Minute,

		// Link issuance is an upstream/tooling call, keep it tight
		SignMax:        30,
		SignExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_GLOBAL_API"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GlobalAPIMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_PUBLIC_READ"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.PublicReadMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_SIGN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.SignMax = n
		}
	}

	// Development mode: more lenient limits
	if os.Getenv("ENVIRONMENT") == "development" {
		config.GlobalAPIMax = 1000
		config.PublicReadMax = 1000
		config.SignMax = 300
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

// GlobalAPIRateLimiter creates a rate limiter for all API requests
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalAPIMax,
		Expiration: config.GlobalAPIExpiration,
		Storage:    config.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Global limit reached for IP: %s", c.IP())
			return tooManyRequests(c, config.GlobalAPIExpiration)
		},
	})
}

// PublicReadRateLimiter for the unauthenticated record lookup
func PublicReadRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.PublicReadMax,
		Expiration: config.PublicReadExpiration,
		Storage:    config.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "public:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Public endpoint limit reached for IP: %s on %s", c.IP(), c.Path())
			return tooManyRequests(c, config.PublicReadExpiration)
		},
	})
}

// SignRateLimiter for link issuance
func SignRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.SignMax,
		Expiration: config.SignExpiration,
		Storage:    config.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "sign:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Link signing limit reached for IP: %s", c.IP())
			return tooManyRequests(c, config.SignExpiration)
		},
	})
}

func tooManyRequests(c *fiber.Ctx, window time.Duration) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"success":     false,
		"message":     "Too many requests. Please slow down.",
		"retry_after": int(window.Seconds()),
	})
}
