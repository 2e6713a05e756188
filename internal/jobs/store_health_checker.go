package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// StorePinger is satisfied by the session store
type StorePinger interface {
	Ping(ctx context.Context) error
}

// StoreStatusRecorder is satisfied by *services.Metrics
type StoreStatusRecorder interface {
	SetStoreUp(up bool)
}

// StoreHealthChecker periodically pings the document store and publishes the result
type StoreHealthChecker struct {
	store    StorePinger
	recorder StoreStatusRecorder
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	healthy *bool
}

// NewStoreHealthChecker creates a new store health checker job
func NewStoreHealthChecker(store StorePinger, recorder StoreStatusRecorder, interval time.Duration) *StoreHealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StoreHealthChecker{
		store:    store,
		recorder: recorder,
		interval: interval,
		timeout:  5 * time.Second,
	}
}

// Run pings the store once. Only state transitions are logged.
func (h *StoreHealthChecker) Run(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.store.Ping(pingCtx)
	up := err == nil

	if h.recorder != nil {
		h.recorder.SetStoreUp(up)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.healthy == nil || *h.healthy != up {
		if up {
			log.Println("✅ [STORE-HEALTH] Document store reachable")
		} else {
			log.Printf("⚠️  [STORE-HEALTH] Document store unreachable: %v", err)
		}
	}
	h.healthy = &up

	return err
}

// Interval returns how often the check runs
func (h *StoreHealthChecker) Interval() time.Duration {
	return h.interval
}
