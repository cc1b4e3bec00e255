package event

import (
	"campus-events/internal/config"
	"campus-events/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EventApi struct {
	controller *EventController
	config     *config.Config
}

func NewEventApi(controller *EventController, config *config.Config) *EventApi {
	return &EventApi{
		controller: controller,
		config:     config,
	}
}

func (h *EventApi) Setup(app *fiber.App) {
	events := app.Group("/api/events", middleware.TenantMiddleware(h.config), middleware.AuthMiddleware(h.config.SkipAuth))

	events.Post("/", h.controller.CreateEvent)
	events.Get("/:id", h.controller.GetEvent)
}
