package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// MinSecretLength is the smallest accepted HS256 key size in bytes.
const MinSecretLength = 32

var (
	// ErrSecretTooShort is returned when the signing secret is below MinSecretLength.
	ErrSecretTooShort = errors.New("jwt secret must be at least 32 bytes")
	// ErrInvalidTTL is returned for a zero or negative token lifetime.
	ErrInvalidTTL = errors.New("token ttl must be positive")
)

// Claims describes the JWT payload.
type Claims struct {
	UserID int64 `json:"userId"`
	Admin  bool  `json:"admin"`
	jwt.RegisteredClaims
}

// Pseudo returns the subject claim.
func (c *Claims) Pseudo() string {
	return c.Subject
}

// Role returns the role encoded in the admin claim.
func (c *Claims) Role() domain.Role {
	return domain.RoleFromAdmin(c.Admin)
}

// ExpiresAtTime returns the expiry as a time.Time, zero when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// TokenManager issues and decodes HS256 signed tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenManager builds a manager. Expiry is not enforced by Decode; use IsExpired.
func NewTokenManager(secret string, ttl time.Duration, opts ...Option) (*TokenManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	tm := &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// TTL returns the default token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Encode issues a token for the user with the default lifetime.
func (tm *TokenManager) Encode(user *domain.User) (string, time.Time, error) {
	return tm.EncodeWithTTL(user, tm.ttl)
}

// EncodeWithTTL issues a token valid for ttl. A ttl <= 0 yields an already expired token.
func (tm *TokenManager) EncodeWithTTL(user *domain.User, ttl time.Duration) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, errors.New("encode token: nil user")
	}
	now := tm.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID: user.ID,
		Admin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Pseudo,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Decode verifies the signature and structure of a token and returns its claims.
// Expired tokens decode successfully.
func (tm *TokenManager) Decode(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, domain.ErrInvalidToken
	}
	claims := &Claims{}
	parsed, err := tm.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// IsExpired reports whether the claims' expiry is at or before now.
func (tm *TokenManager) IsExpired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !tm.now().Before(claims.ExpiresAt.Time)
}
