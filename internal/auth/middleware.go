package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth for downstream handlers.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// RequireAuth extracts the bearer token, validates it, and attaches the
// caller's identity to the request. A missing token is 401; a present
// but invalid or expired one is 403.
func RequireAuth(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
		}

		claims, err := issuer.Parse(strings.TrimSpace(parts[1]))
		if err != nil || claims.TokenType != TokenTypeSession {
			return fiber.NewError(fiber.StatusForbidden, "Invalid or expired token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireAdmin gates admin-only capability. It assumes RequireAuth has
// already attached the caller's role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role != "admin" {
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's ID, if any.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
