package token

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Middleware authenticates requests carrying a Bearer access token.
type Middleware struct {
	issuer *Issuer
}

// NewMiddleware creates an authentication middleware backed by the issuer.
func NewMiddleware(issuer *Issuer) *Middleware {
	return &Middleware{issuer: issuer}
}

// Authenticate validates the access token and stores the account id in
// the request locals under "account_id".
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Authorization header required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid authorization header",
			})
		}

		claims, err := m.issuer.Verify(parts[1], KindAccess)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid token",
			})
		}

		c.Locals("account_id", claims.AccountID)
		return c.Next()
	}
}
