// Package apperror holds the error kinds shared by the tenant router and the
// approval engine. Concrete errors wrap one of the sentinels so callers can
// branch with errors.Is.
package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrConfiguration means a tenant has no storage mapping and no default exists
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("not authorized")
	// ErrConflict is returned when a concurrent transition already changed the state
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid request")
)

// StatusCode maps an error onto the HTTP status the handlers respond with
func StatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrAuthorization):
		return fiber.StatusForbidden
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalid):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes err as the standard {"error": ...} body
func Respond(c *fiber.Ctx, err error) error {
	return c.Status(StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}
