package middleware

import (
	"strings"

	"campus-events/internal/config"
	"campus-events/internal/tenant"

	"github.com/gofiber/fiber/v2"
)

const TenantHeader = "X-Tenant-ID"

// TenantLocalsKey exposes the tenant to handlers that do not use the user context (websockets)
const TenantLocalsKey = "tenant"

// TenantMiddleware binds the request to a tenant: the X-Tenant-ID header, else
// the leftmost subdomain (rpi.events.example.edu), else the configured default.
func TenantMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := strings.TrimSpace(c.Get(TenantHeader))
		if tenantID == "" {
			tenantID = subdomain(c.Hostname())
		}
		if tenantID == "" {
			tenantID = cfg.DefaultTenant
		}
		if tenantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Tenant identifier required",
			})
		}

		tenantID = strings.ToLower(tenantID)
		c.Locals(TenantLocalsKey, tenantID)
		c.SetUserContext(tenant.WithTenant(c.UserContext(), tenantID))
		return c.Next()
	}
}

func subdomain(host string) string {
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 || labels[0] == "www" || isNumeric(labels[len(labels)-1]) {
		return ""
	}
	return labels[0]
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
