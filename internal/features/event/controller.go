package event

import (
	"campus-events/internal/common/apperror"
	"campus-events/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EventController struct {
	Service EventService
}

func NewEventController(service EventService) *EventController {
	return &EventController{Service: service}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an event and start its approval when the tenant's flow requires one
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventInput true "Event"
// @Success 201 {object} Event
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/events [post]
func (c *EventController) CreateEvent(ctx *fiber.Ctx) error {
	var input CreateEventInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var userID string
	if claims, ok := middleware.Claims(ctx); ok {
		userID = claims.UserID
	}

	ev, err := c.Service.Create(ctx.UserContext(), input, userID)
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(ev)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} Event
// @Failure 404 {object} map[string]string "Event not found"
// @Router /api/events/{id} [get]
func (c *EventController) GetEvent(ctx *fiber.Ctx) error {
	ev, err := c.Service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.JSON(ev)
}
