package middleware

import (
	"context"
	"time"

	common_models "campus-events/internal/common/models"
	"campus-events/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with a uuid and copies it into the user context
func RequestIDMiddleware() []fiber.Handler {
	return []fiber.Handler{
		requestid.New(requestid.Config{
			Header:     RequestIDHeader,
			Generator:  uuid.NewString,
			ContextKey: "requestid",
		}),
		func(c *fiber.Ctx) error {
			if id, ok := c.Locals("requestid").(string); ok {
				c.SetUserContext(context.WithValue(c.UserContext(), common_models.RequestIDKey, id))
			}
			return c.Next()
		},
	}
}

// RequestLogger logs one line per request with tenant and request id
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if tenantID, ok := tenant.FromContext(c.UserContext()); ok {
			fields = append(fields, zap.String("tenant", tenantID))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Info("Request handled", fields...)
		return err
	}
}
