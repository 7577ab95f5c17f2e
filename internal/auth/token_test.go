package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestManager(t *testing.T, opts ...Option) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tm
}

func TestNewTokenManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewTokenManager("short", time.Hour); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
}

func TestNewTokenManagerRejectsNonPositiveTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		if _, err := NewTokenManager(testSecret, ttl); !errors.Is(err, ErrInvalidTTL) {
			t.Fatalf("ttl %v: expected ErrInvalidTTL, got %v", ttl, err)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tm := newTestManager(t)
	user := &domain.User{ID: 42, Pseudo: "alice", IsAdmin: true}

	token, exp, err := tm.Encode(user)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(strings.Split(token, ".")) != 3 {
		t.Fatalf("expected three segment token, got %q", token)
	}

	claims, err := tm.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Pseudo() != "alice" || claims.UserID != 42 || !claims.Admin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAtTime().Equal(exp) {
		t.Fatalf("expiry mismatch: %v vs %v", claims.ExpiresAtTime(), exp)
	}
	if claims.Role() != domain.RoleAdmin {
		t.Fatalf("expected admin role")
	}
	if tm.IsExpired(claims) {
		t.Fatalf("fresh token should not be expired")
	}
}

func TestEncodeProducesDistinctTokens(t *testing.T) {
	tm := newTestManager(t, WithClock(fixedClock(time.Unix(1_700_000_000, 0))))
	user := &domain.User{ID: 1, Pseudo: "bob"}

	first, _, err := tm.Encode(user)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, _, err := tm.Encode(user)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens for the same instant")
	}
}

func TestNonPositiveTTLIsExpired(t *testing.T) {
	tm := newTestManager(t)
	user := &domain.User{ID: 1, Pseudo: "bob"}

	for _, ttl := range []time.Duration{0, -time.Minute} {
		token, _, err := tm.EncodeWithTTL(user, ttl)
		if err != nil {
			t.Fatalf("EncodeWithTTL(%v): %v", ttl, err)
		}
		claims, err := tm.Decode(token)
		if err != nil {
			t.Fatalf("expired token should still decode: %v", err)
		}
		if !tm.IsExpired(claims) {
			t.Fatalf("ttl %v should produce an expired token", ttl)
		}
	}
}

func TestExpiryFollowsClock(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tm := newTestManager(t, WithClock(func() time.Time { return now }))
	token, _, err := tm.Encode(&domain.User{ID: 3, Pseudo: "carol"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	claims, err := tm.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if tm.IsExpired(claims) {
		t.Fatalf("token should be valid before ttl")
	}
	now = now.Add(time.Minute)
	if !tm.IsExpired(claims) {
		t.Fatalf("token should expire exactly at ttl")
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	tm := newTestManager(t)
	token, _, err := tm.Encode(&domain.User{ID: 1, Pseudo: "bob"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	other, err := NewTokenManager(strings.Repeat("x", MinSecretLength), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := map[string]struct {
		tm    *TokenManager
		token string
	}{
		"wrong secret": {other, token},
		"tampered":     {tm, tampered},
		"garbage":      {tm, "not-a-token"},
		"empty":        {tm, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tc.tm.Decode(tc.token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsOtherAlgorithms(t *testing.T) {
	tm := newTestManager(t)
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "bob",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}
}
