package approval

import (
	"campus-events/internal/config"
	"campus-events/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	controller *ApprovalController
	config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, config *config.Config) *ApprovalApi {
	return &ApprovalApi{
		controller: controller,
		config:     config,
	}
}

func (h *ApprovalApi) Setup(app *fiber.App) {
	tenantMw := middleware.TenantMiddleware(h.config)
	authMw := middleware.AuthMiddleware(h.config.SkipAuth)

	// Group: /approvals/flow
	flow := app.Group("/api/approvals/flow", tenantMw, authMw)
	flow.Get("/", h.controller.GetFlow)
	flow.Put("/", middleware.RequireRole(h.config.AdminRole), h.controller.SaveFlow)

	// Group: /events/:id/approval
	approval := app.Group("/api/events/:id/approval", tenantMw, authMw)
	approval.Get("/", h.controller.GetInstance)
	approval.Post("/approve", h.controller.Approve)
	approval.Post("/reject", h.controller.Reject)
	approval.Post("/comments", h.controller.AddComment)
	approval.Delete("/comments/:commentId", h.controller.RemoveComment)
}
