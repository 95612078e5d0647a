package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tugas-go/internal/token"
)

const identityKey = "identity"

// Verifier checks a raw bearer token and returns who it belongs to.
type Verifier interface {
	Verify(raw string) (token.Identity, error)
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": msg,
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}

// RequireToken rejects requests without a valid "Authorization: Bearer <token>"
// header and stores the decoded identity in the request locals.
func RequireToken(v Verifier, security *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		scheme, raw, _ := strings.Cut(authHeader, " ")
		raw = strings.TrimSpace(raw)
		if !strings.EqualFold(scheme, "Bearer") || raw == "" {
			return unauthorized(c, "No token provided")
		}

		id, err := v.Verify(raw)
		if err != nil {
			security.Warn("Rejected token",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Error(err),
			)
			if errors.Is(err, token.ErrExpiredToken) {
				return unauthorized(c, "Token expired")
			}
			return unauthorized(c, "Invalid token")
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireToken.
func IdentityFrom(c *fiber.Ctx) (token.Identity, bool) {
	id, ok := c.Locals(identityKey).(token.Identity)
	return id, ok
}
