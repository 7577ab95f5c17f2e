package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

type identityKey struct{}

// WithIdentity stores the resolved identity on ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored on ctx, or an anonymous one.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if ctx == nil {
		return domain.Anonymous()
	}
	if id, ok := ctx.Value(identityKey{}).(domain.Identity); ok {
		return id
	}
	return domain.Anonymous()
}

// IdentityFrom reads the identity attached to a fiber request.
func IdentityFrom(c *fiber.Ctx) domain.Identity {
	return IdentityFromContext(c.UserContext())
}
