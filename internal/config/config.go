package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string

	// Document store
	MongoURI         string
	DatabaseName     string
	Collection       string
	MongoMaxPoolSize uint64

	// External links
	LinkSecret     string // EXTERNAL_LINK_SECRET; empty disables signing and verification
	LinkDefaultTTL time.Duration
	LinkMaxTTL     time.Duration

	// HTTP surface
	CORSOrigins  []string
	StaticDir    string
	IngestAPIKey string

	// Optional infrastructure
	RedisURL            string
	SessionCacheTTL     time.Duration
	StoreHealthInterval time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "4000"),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "")),

		MongoURI:         getEnv("MONGODB_URI", ""),
		DatabaseName:     getEnv("DB_NAME", "experiment_system"),
		Collection:       getEnv("COLLECTION", "experiments"),
		MongoMaxPoolSize: uint64(getIntEnv("MONGO_MAX_POOL_SIZE", 10)),

		LinkSecret:     os.Getenv("EXTERNAL_LINK_SECRET"),
		LinkDefaultTTL: getDurationEnv("LINK_DEFAULT_TTL", 300*time.Second),
		LinkMaxTTL:     getDurationEnv("LINK_MAX_TTL", 30*24*time.Hour),

		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
		StaticDir:    getEnv("STATIC_DIR", ""),
		IngestAPIKey: getEnv("INGEST_API_KEY", ""),

		RedisURL:            getEnv("REDIS_URL", ""),
		SessionCacheTTL:     getDurationEnv("SESSION_CACHE_TTL", 0),
		StoreHealthInterval: getDurationEnv("STORE_HEALTH_INTERVAL", 30*time.Second),
	}
}

// IsProduction reports whether ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowAllOrigins reports whether CORS is left open
func (c *Config) AllowAllOrigins() bool {
	return len(c.CORSOrigins) == 0 || (len(c.CORSOrigins) == 1 && c.CORSOrigins[0] == "*")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("90s", "12h") or bare seconds ("300")
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed >= 0 {
		return parsed
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
