package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sessionlink/internal/models"
	"sessionlink/pkg/auth"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrMissingIdentifier is returned when neither the path nor the token yields a session id
	ErrMissingIdentifier = errors.New("missing session identifier")

	// ErrRecordNotFound is returned when no stored document matches the lookup
	ErrRecordNotFound = errors.New("session record not found")
)

// StorageError wraps a document store failure. It is never retried here.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SessionFinder executes a lookup query and returns the first matching raw
// document. found is false when nothing matched.
type SessionFinder interface {
	FindFirst(ctx context.Context, query LookupQuery) (doc bson.M, found bool, err error)
}

// SessionLookupService resolves an external link request to one session record
type SessionLookupService struct {
	store   SessionFinder
	links   *auth.LinkAuth
	cache   *SessionCache
	metrics *Metrics
}

// NewSessionLookupService creates a lookup service over store. links may be
// disabled (no secret), in which case every bearer token is ignored.
func NewSessionLookupService(store SessionFinder, links *auth.LinkAuth) *SessionLookupService {
	return &SessionLookupService{
		store: store,
		links: links,
	}
}

// SetCache enables read-through caching of found records
func (s *SessionLookupService) SetCache(cache *SessionCache) {
	s.cache = cache
}

// SetMetrics attaches Prometheus collectors
func (s *SessionLookupService) SetMetrics(metrics *Metrics) {
	s.metrics = metrics
}

// Lookup resolves rawID (or the session id inside bearerToken) to a
// normalized record. Errors: ErrMissingIdentifier, ErrRecordNotFound or
// *StorageError.
func (s *SessionLookupService) Lookup(ctx context.Context, rawID, bearerToken string) (*models.SessionRecord, error) {
	verification := s.links.Verify(bearerToken)
	s.metrics.recordTokenOutcome(verification.Outcome())

	var claims *auth.LinkClaims
	if verification.Valid() {
		claims = verification.Claims()
	} else if bearerToken != "" {
		// Rejected tokens are ignored; the path id is used instead.
		slog.Debug("link token rejected, falling back to path id")
	}

	id, err := ResolveSessionID(rawID, claims)
	if err != nil {
		s.metrics.recordLookup("missing_id")
		return nil, err
	}

	if record, ok := s.cache.Get(id); ok {
		s.metrics.recordLookup("cache_hit")
		return record, nil
	}

	query := BuildLookupQuery(id)

	start := time.Now()
	doc, found, err := s.store.FindFirst(ctx, query)
	s.metrics.observeStoreLatency(time.Since(start))
	if err != nil {
		s.metrics.recordLookup("storage_error")
		return nil, &StorageError{Op: "find", Err: err}
	}
	if !found {
		s.metrics.recordLookup("not_found")
		return nil, ErrRecordNotFound
	}

	record := NormalizeSession(doc)
	s.cache.Set(id, record)
	s.metrics.recordLookup("found")

	return record, nil
}
