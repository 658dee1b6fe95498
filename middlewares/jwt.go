package middlewares

import (
	"betaffiliate/helpers"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const ClaimsLocal = "claims"

// JWTAuth accepts bearer tokens signed with secret whose role is one of roles.
func JWTAuth(secret string, roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return helpers.JSONFailure(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}

		claims, err := helpers.ParseToken(secret, strings.TrimSpace(auth[7:]))
		if err != nil {
			return helpers.JSONFailure(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
		}
		if !allowed[claims.Role] {
			return helpers.JSONFailure(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient role")
		}

		c.Locals(ClaimsLocal, claims)
		return c.Next()
	}
}

func CurrentClaims(c *fiber.Ctx) (*helpers.Claims, bool) {
	claims, ok := c.Locals(ClaimsLocal).(*helpers.Claims)
	return claims, ok
}
