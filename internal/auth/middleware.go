package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

const bearerPrefix = "Bearer "

// PublicPath is an allow-list entry whose requests skip token processing.
type PublicPath struct {
	Path   string
	Prefix bool
}

// Matches reports whether path is covered by the entry.
func (p PublicPath) Matches(path string) bool {
	if p.Prefix {
		return strings.HasPrefix(path, p.Path)
	}
	return path == p.Path
}

// DefaultPublicPaths lists the routes reachable without token processing.
func DefaultPublicPaths() []PublicPath {
	return []PublicPath{
		{Path: "/api/auth/login", Prefix: true},
		{Path: "/api/auth/register", Prefix: true},
		{Path: "/api/tickets/unresolved"},
		{Path: "/api/tickets/public"},
		{Path: "/swagger-ui", Prefix: true},
		{Path: "/v3/api-docs", Prefix: true},
		{Path: "/health", Prefix: true},
		{Path: "/metrics"},
	}
}

// IdentityMiddleware resolves the caller from the Authorization header.
// It never rejects a request: any failure leaves the caller anonymous and
// the route gates decide.
type IdentityMiddleware struct {
	tokens *TokenManager
	public []PublicPath
	logger *zap.Logger
}

// NewIdentityMiddleware constructs the middleware. A nil public list uses DefaultPublicPaths.
func NewIdentityMiddleware(tokens *TokenManager, public []PublicPath, logger *zap.Logger) *IdentityMiddleware {
	if public == nil {
		public = DefaultPublicPaths()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityMiddleware{tokens: tokens, public: public, logger: logger}
}

// Handle attaches the resolved identity to the request context.
func (m *IdentityMiddleware) Handle(c *fiber.Ctx) error {
	if m.isPublic(c.Path()) {
		return c.Next()
	}

	token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	claims, err := m.tokens.Decode(token)
	if err != nil {
		m.logger.Debug("discarding undecodable token", zap.String("path", c.Path()), zap.Error(err))
		return c.Next()
	}
	if m.tokens.IsExpired(claims) {
		m.logger.Debug("discarding expired token", zap.String("path", c.Path()), zap.String("pseudo", claims.Pseudo()))
		return c.Next()
	}

	c.SetUserContext(WithIdentity(c.UserContext(), domain.NewIdentity(claims.UserID, claims.Role())))
	return c.Next()
}

func (m *IdentityMiddleware) isPublic(path string) bool {
	for _, p := range m.public {
		if p.Matches(path) {
			return true
		}
	}
	return false
}

// BearerToken extracts the token from an Authorization header value.
// Only the exact "Bearer " prefix is accepted.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
