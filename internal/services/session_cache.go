package services

import (
	"time"

	"sessionlink/internal/models"

	"github.com/patrickmn/go-cache"
)

// SessionCache is a short-lived in-process cache of normalized records keyed by
// canonical session id. Only found records are cached; misses always reach
// the store. A nil *SessionCache is a valid, disabled cache.
type SessionCache struct {
	cache *cache.Cache
}

// NewSessionCache returns nil when ttl is not positive
func NewSessionCache(ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		return nil
	}
	// Janitor runs every 2x TTL, capped at one minute
	cleanup := 2 * ttl
	if cleanup > time.Minute {
		cleanup = time.Minute
	}
	return &SessionCache{cache: cache.New(ttl, cleanup)}
}

// Get returns a cached record
func (c *SessionCache) Get(id string) (*models.SessionRecord, bool) {
	if c == nil {
		return nil, false
	}
	value, found := c.cache.Get(id)
	if !found {
		return nil, false
	}
	record, ok := value.(*models.SessionRecord)
	return record, ok
}

// Set stores a record with the default expiration
func (c *SessionCache) Set(id string, record *models.SessionRecord) {
	if c == nil || record == nil {
		return
	}
	c.cache.Set(id, record, cache.DefaultExpiration)
}

// Flush drops every cached record
func (c *SessionCache) Flush() {
	if c == nil {
		return
	}
	c.cache.Flush()
}

// Count returns the number of cached records
func (c *SessionCache) Count() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}
