package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// claimsKey is the fiber.Ctx locals key holding the verified Claims.
const claimsKey = "auth_claims"

// Middleware builds Fiber handlers that enforce bearer-token authentication.
type Middleware struct {
	issuer *TokenIssuer
}

// NewMiddleware creates an auth Middleware around the given issuer.
func NewMiddleware(issuer *TokenIssuer) *Middleware {
	return &Middleware{issuer: issuer}
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the verified claims in the request context.
func (m *Middleware) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := extractBearer(header)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "No authentication token provided",
		})
	}

	claims, err := m.issuer.Verify(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
		})
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// RequireAdmin rejects authenticated requests whose token is not an admin's.
// Must run after RequireAuth.
func (m *Middleware) RequireAdmin(c *fiber.Ctx) error {
	claims := UserFromCtx(c)
	if claims == nil || !claims.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Administrator role required",
		})
	}
	return c.Next()
}

// UserFromCtx returns the verified claims stored by RequireAuth, or nil.
func UserFromCtx(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(claimsKey).(*Claims)
	return claims
}

// SetUserForTest injects claims into the request context. Test helper for
// exercising handlers without a signed token.
func SetUserForTest(c *fiber.Ctx, claims *Claims) {
	c.Locals(claimsKey, claims)
}

func extractBearer(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
