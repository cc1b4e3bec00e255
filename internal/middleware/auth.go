package middleware

import (
	"context"
	"strings"

	"campus-events/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and injects user claims into context.
// It runs after TenantMiddleware: a token issued for another tenant is refused.
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bound, _ := c.Locals(TenantLocalsKey).(string)

		if skipAuth {
			// Dev identity; roles can be supplied with X-Dev-Roles
			claims := &utils.UserClaims{UserID: "dev-admin-id", Tenant: bound}
			if roles := c.Get("X-Dev-Roles"); roles != "" {
				for _, role := range strings.Split(roles, ",") {
					claims.Roles = append(claims.Roles, strings.TrimSpace(role))
				}
			}
			setClaims(c, claims)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := utils.ValidateToken(authHeader[7:])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		if claims.Tenant == "" || !strings.EqualFold(claims.Tenant, bound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Token is not valid for this tenant",
			})
		}

		setClaims(c, claims)
		return c.Next()
	}
}

func setClaims(c *fiber.Ctx, claims *utils.UserClaims) {
	c.Locals(utils.UserClaimsKey, claims)
	c.SetUserContext(context.WithValue(c.UserContext(), utils.UserClaimsKey, claims))
}

// Claims returns the authenticated actor, if any
func Claims(c *fiber.Ctx) (*utils.UserClaims, bool) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	return claims, ok
}
