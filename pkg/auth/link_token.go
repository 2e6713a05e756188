package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultLinkTTL is the validity window used when the caller does not ask for one
const DefaultLinkTTL = 300 * time.Second

var (
	// ErrSigningUnavailable is returned when no link secret is configured.
	// Links are never issued unsigned.
	ErrSigningUnavailable = errors.New("link signing is not configured")

	// ErrInvalidLinkRequest is returned for a blank session id or an unusable TTL
	ErrInvalidLinkRequest = errors.New("invalid link request")
)

// ExtractToken extracts the token from an Authorization header value.
// Supports "Bearer <token>" format.
func ExtractToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("empty authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty token")
	}

	return token, nil
}

// FlexString decodes a JSON string or number into a string.
// Upstream platforms sometimes embed numeric session ids.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("session id must be a string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// LinkClaims is the payload of an external-link token
type LinkClaims struct {
	SessionID FlexString `json:"sessionId"`
	UserID    FlexString `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// SignedLink is the result of issuing a link token
type SignedLink struct {
	Token     string
	ExpiresIn int64 // seconds
	ExpiresAt time.Time
}

// LinkAuth signs and verifies time-limited external-link tokens (HMAC JWT).
// A zero-length secret disables both directions.
type LinkAuth struct {
	secretKey []byte
	maxTTL    time.Duration
	now       func() time.Time
}

// NewLinkAuth creates a link signer/verifier. An empty secret is accepted and
// yields an instance that refuses to sign and rejects every token.
func NewLinkAuth(secretKey string, maxTTL time.Duration) *LinkAuth {
	return &LinkAuth{
		secretKey: []byte(secretKey),
		maxTTL:    maxTTL,
		now:       time.Now,
	}
}

// WithClock replaces the time source (tests)
func (a *LinkAuth) WithClock(now func() time.Time) *LinkAuth {
	a.now = now
	return a
}

// Enabled reports whether a signing secret is configured
func (a *LinkAuth) Enabled() bool {
	return a != nil && len(a.secretKey) > 0
}

// Sign issues a token binding sessionID (and optionally userID) for ttl.
// A zero ttl means DefaultLinkTTL.
func (a *LinkAuth) Sign(sessionID, userID string, ttl time.Duration) (*SignedLink, error) {
	if !a.Enabled() {
		return nil, ErrSigningUnavailable
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidLinkRequest)
	}

	if ttl == 0 {
		ttl = DefaultLinkTTL
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("%w: expiry must be at least one second", ErrInvalidLinkRequest)
	}
	if a.maxTTL > 0 && ttl > a.maxTTL {
		return nil, fmt.Errorf("%w: expiry exceeds maximum of %s", ErrInvalidLinkRequest, a.maxTTL)
	}

	now := a.now()
	expiresAt := now.Add(ttl)

	claims := LinkClaims{
		SessionID: FlexString(sessionID),
		UserID:    FlexString(strings.TrimSpace(userID)),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := tokenObj.SignedString(a.secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign link token: %w", err)
	}

	return &SignedLink{
		Token:     token,
		ExpiresIn: int64(ttl / time.Second),
		ExpiresAt: expiresAt,
	}, nil
}

type verificationStatus int

const (
	verificationAbsent verificationStatus = iota
	verificationValid
	verificationRejected
)

// Verification is the outcome of checking a presented link token.
// A rejected token carries no reason: callers fall back to the plain id.
type Verification struct {
	claims *LinkClaims
	status verificationStatus
}

// Valid reports whether the token verified and carries claims
func (v Verification) Valid() bool {
	return v.status == verificationValid && v.claims != nil
}

// Claims returns the verified claims, or nil
func (v Verification) Claims() *LinkClaims {
	if !v.Valid() {
		return nil
	}
	return v.claims
}

// Outcome is a coarse label for metrics: "absent", "valid" or "rejected"
func (v Verification) Outcome() string {
	switch v.status {
	case verificationValid:
		return "valid"
	case verificationRejected:
		return "rejected"
	default:
		return "absent"
	}
}

// Verify checks signature and expiry of tokenString. It never returns an
// error; any failure yields a Verification whose Valid() is false.
func (a *LinkAuth) Verify(tokenString string) Verification {
	if tokenString == "" {
		return Verification{status: verificationAbsent}
	}
	if !a.Enabled() {
		return Verification{status: verificationRejected}
	}

	claims := &LinkClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return Verification{status: verificationRejected}
	}

	return Verification{claims: claims, status: verificationValid}
}

// ParseTTLSeconds converts an expSec request value into a duration.
// Accepts JSON numbers and numeric strings; nil means the default.
func ParseTTLSeconds(raw interface{}, fallback time.Duration) (time.Duration, error) {
	switch v := raw.(type) {
	case nil:
		return fallback, nil
	case float64:
		return secondsToDuration(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: expSec must be numeric", ErrInvalidLinkRequest)
		}
		return secondsToDuration(f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return fallback, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: expSec must be numeric", ErrInvalidLinkRequest)
		}
		return secondsToDuration(f)
	default:
		return 0, fmt.Errorf("%w: expSec must be numeric", ErrInvalidLinkRequest)
	}
}

func secondsToDuration(seconds float64) (time.Duration, error) {
	if seconds < 1 || math.IsNaN(seconds) {
		return 0, fmt.Errorf("%w: expSec must be a positive number of seconds", ErrInvalidLinkRequest)
	}
	// expiresIn echoes whole seconds, so a fraction would be silently dropped
	if seconds != math.Trunc(seconds) {
		return 0, fmt.Errorf("%w: expSec must be a whole number of seconds", ErrInvalidLinkRequest)
	}
	if seconds > float64(1<<62)/float64(time.Second) {
		return 0, fmt.Errorf("%w: expSec is too large", ErrInvalidLinkRequest)
	}
	return time.Duration(seconds) * time.Second, nil
}
