package system

import (
	"campus-events/internal/common/api"
	"campus-events/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TenantLister reports the tenants with an open connection
type TenantLister interface {
	Tenants() []string
}

type HealthApi struct {
	Tenants TenantLister
}

func NewHealthApi(registry *tenant.Registry) api.Route {
	return &HealthApi{Tenants: registry}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up and list the tenants with an open connection
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"tenants": h.Tenants.Tenants(),
	})
}
