package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireRole admits the actor only if one of its roles matches role (case-insensitive)
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !HasRole(claims.Roles, role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: " + role + " role required",
			})
		}

		return c.Next()
	}
}

func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
