package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/security"
)

// CallerKey is the fiber Locals key holding the authenticated email.
const CallerKey = "caller_email"

// AccountFinder is the slice of the store the role gate needs.
type AccountFinder interface {
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// Protected verifies the bearer token and stores the caller's email in
// the request context. The token carries identity only, never role.
func Protected(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthorized(c)
		}

		email, err := security.ParseToken(parts[1], secret)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(CallerKey, email)
		return c.Next()
	}
}

// RequireRole re-resolves the caller's account from storage on every
// request and rejects the call when the stored role does not match.
// Trusting the role claim from a year-long token would let a demoted
// caller keep their old privileges, so the role always comes from the
// store.
func RequireRole(store AccountFinder, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals(CallerKey).(string)
		if email == "" {
			return unauthorized(c)
		}

		acc, err := store.FindAccountByEmail(c.Context(), email)
		if err != nil || acc.Role != role {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{
				"message": domain.ErrForbidden.Error(),
				"status":  http.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// Caller returns the authenticated email set by Protected.
func Caller(c *fiber.Ctx) string {
	email, _ := c.Locals(CallerKey).(string)
	return email
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"message": domain.ErrUnauthenticated.Error(),
		"status":  http.StatusUnauthorized,
	})
}
