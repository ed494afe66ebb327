package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"floryn/internal/apperror"
	"floryn/internal/services"
)

const identityKey = "identity"

// TokenVerifier resolves a bearer token to the caller behind it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*services.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. Failures
// are returned to the app's error handler as 401 kinds.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperror.New(apperror.KindUnauthenticated, "authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperror.New(apperror.KindUnauthenticated, "authorization header format must be 'Bearer <token>'")
		}

		identity, err := verifier.VerifyToken(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		c.Locals(identityKey, *identity)
		return c.Next()
	}
}

// RequireRole lets the request through only when the authenticated caller
// holds one of roles. It must run after AuthRequired.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return apperror.New(apperror.KindUnauthenticated, "authentication required")
		}
		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}
		return apperror.New(apperror.KindForbidden, "you do not have permission to perform this action")
	}
}

// CurrentIdentity returns the caller stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok
}
