package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lowercase scheme", "bearer tok", "tok", false},
		{"empty", "", "", true},
		{"basic scheme", "Basic dXNlcg==", "", true},
		{"missing token", "Bearer   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestSignThenVerify(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	a := NewLinkAuth("test-secret", 0).WithClock(fixedClock(issued))

	link, err := a.Sign("S1", "U7", 60*time.Second)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if link.ExpiresIn != 60 {
		t.Errorf("Expected expiresIn 60, got %d", link.ExpiresIn)
	}
	if !link.ExpiresAt.Equal(issued.Add(60 * time.Second)) {
		t.Errorf("Unexpected expiry %v", link.ExpiresAt)
	}

	v := a.Verify(link.Token)
	if !v.Valid() {
		t.Fatal("Expected freshly issued token to verify")
	}
	if got := string(v.Claims().SessionID); got != "S1" {
		t.Errorf("Expected sessionId S1, got %q", got)
	}
	if got := string(v.Claims().UserID); got != "U7" {
		t.Errorf("Expected userId U7, got %q", got)
	}
	if v.Claims().ID == "" {
		t.Error("Expected a token id")
	}
	if v.Outcome() != "valid" {
		t.Errorf("Expected outcome valid, got %s", v.Outcome())
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	signer := NewLinkAuth("test-secret", 0).WithClock(fixedClock(issued))

	link, err := signer.Sign("S1", "", time.Second)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	later := NewLinkAuth("test-secret", 0).WithClock(fixedClock(issued.Add(2 * time.Second)))
	v := later.Verify(link.Token)
	if v.Valid() {
		t.Fatal("Expected expired token to be rejected")
	}
	if v.Claims() != nil {
		t.Error("Expected no claims for expired token")
	}
	if v.Outcome() != "rejected" {
		t.Errorf("Expected outcome rejected, got %s", v.Outcome())
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	a := NewLinkAuth("test-secret", 0)
	link, err := a.Sign("S1", "", time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	other := NewLinkAuth("another-secret", 0)
	if other.Verify(link.Token).Valid() {
		t.Error("Expected token signed with a different secret to be rejected")
	}

	parts := strings.Split(link.Token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if a.Verify(strings.Join(parts, ".")).Valid() {
		t.Error("Expected token with altered signature to be rejected")
	}

	if a.Verify("not-a-jwt").Valid() {
		t.Error("Expected malformed token to be rejected")
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := LinkClaims{
		SessionID: "S1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	if NewLinkAuth("test-secret", 0).Verify(unsigned).Valid() {
		t.Error("Expected alg=none token to be rejected")
	}
}

func TestVerifyRequiresExpiry(t *testing.T) {
	claims := LinkClaims{SessionID: "S1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	if NewLinkAuth("test-secret", 0).Verify(token).Valid() {
		t.Error("Expected token without exp to be rejected")
	}
}

func TestVerifyAcceptsNumericSessionID(t *testing.T) {
	claims := jwt.MapClaims{
		"sessionId": 12345,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	v := NewLinkAuth("test-secret", 0).Verify(token)
	if !v.Valid() {
		t.Fatal("Expected HS512 token with numeric sessionId to verify")
	}
	if got := string(v.Claims().SessionID); got != "12345" {
		t.Errorf("Expected sessionId 12345, got %q", got)
	}
}

func TestSigningUnavailable(t *testing.T) {
	a := NewLinkAuth("", 0)

	// Fails closed regardless of input validity.
	for _, sessionID := range []string{"S1", ""} {
		if _, err := a.Sign(sessionID, "", time.Minute); !errors.Is(err, ErrSigningUnavailable) {
			t.Errorf("Sign(%q) error = %v, want ErrSigningUnavailable", sessionID, err)
		}
	}

	if a.Verify("anything").Valid() {
		t.Error("Expected verification to fail without a secret")
	}

	var nilAuth *LinkAuth
	if nilAuth.Enabled() {
		t.Error("Expected nil LinkAuth to be disabled")
	}
}

func TestSignValidation(t *testing.T) {
	a := NewLinkAuth("test-secret", time.Hour)

	tests := []struct {
		name      string
		sessionID string
		ttl       time.Duration
		wantErr   bool
	}{
		{"default ttl", "S1", 0, false},
		{"blank session", "   ", time.Minute, true},
		{"negative ttl", "S1", -time.Second, true},
		{"sub-second ttl", "S1", 500 * time.Millisecond, true},
		{"over maximum", "S1", 2 * time.Hour, true},
		{"at maximum", "S1", time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := a.Sign(tt.sessionID, "", tt.ttl)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLinkRequest) {
					t.Fatalf("Expected ErrInvalidLinkRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.ttl == 0 && link.ExpiresIn != int64(DefaultLinkTTL/time.Second) {
				t.Errorf("Expected default expiry, got %d", link.ExpiresIn)
			}
		})
	}
}

func TestParseTTLSeconds(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    time.Duration
		wantErr bool
	}{
		{"nil uses fallback", nil, 300 * time.Second, false},
		{"float", float64(60), time.Minute, false},
		{"json number", json.Number("2"), 2 * time.Second, false},
		{"numeric string", "10", 10 * time.Second, false},
		{"blank string uses fallback", "  ", 300 * time.Second, false},
		{"zero", float64(0), 0, true},
		{"negative", float64(-5), 0, true},
		{"garbage string", "soon", 0, true},
		{"bool", true, 0, true},
		{"fractional float", float64(1.5), 0, true},
		{"fractional string", "90.25", 0, true},
		{"whole float string", "120.0", 2 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTTLSeconds(tt.raw, 300*time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTTLSeconds(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTTLSeconds(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
