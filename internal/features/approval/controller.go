package approval

import (
	"campus-events/internal/common/apperror"
	"campus-events/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalController struct {
	Service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{Service: service}
}

type saveFlowRequest struct {
	Steps []FlowStep `json:"steps"`
}

type decisionRequest struct {
	Reason string `json:"reason"`
}

type commentRequest struct {
	Text            string `json:"text"`
	ParentCommentID string `json:"parent_comment_id"`
}

// GetFlow godoc
// @Summary Get the approval flow
// @Description Get the approval flow definition of the current tenant
// @Tags approvals
// @Produce json
// @Success 200 {object} FlowDefinition
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/approvals/flow [get]
func (c *ApprovalController) GetFlow(ctx *fiber.Ctx) error {
	flow, err := c.Service.GetFlow(ctx.UserContext())
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.JSON(flow)
}

// SaveFlow godoc
// @Summary Save the approval flow
// @Description Replace the approval flow definition of the current tenant
// @Tags approvals
// @Accept json
// @Produce json
// @Param flow body saveFlowRequest true "Flow steps"
// @Success 200 {object} FlowDefinition
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/approvals/flow [put]
func (c *ApprovalController) SaveFlow(ctx *fiber.Ctx) error {
	var input saveFlowRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var actorID string
	if claims, ok := middleware.Claims(ctx); ok {
		actorID = claims.UserID
	}

	flow, err := c.Service.SaveFlow(ctx.UserContext(), input.Steps, actorID)
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.JSON(flow)
}

// GetInstance godoc
// @Summary Get the approval of an event
// @Tags approvals
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} Instance
// @Failure 404 {object} map[string]string "Approval instance not found"
// @Router /api/events/{id}/approval [get]
func (c *ApprovalController) GetInstance(ctx *fiber.Ctx) error {
	instance, err := c.Service.GetInstance(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.JSON(instance)
}

// Approve godoc
// @Summary Approve the current step
// @Description Approve the step awaiting a decision. The caller must hold the step's role.
// @Tags approvals
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} Instance
// @Failure 403 {object} map[string]string "Role not permitted"
// @Failure 404 {object} map[string]string "Approval instance not found"
// @Failure 409 {object} map[string]string "Step already decided"
// @Router /api/events/{id}/approval/approve [post]
func (c *ApprovalController) Approve(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	instance, err := c.Service.Approve(ctx.UserContext(), ctx.Params("id"), claims.UserID, claims.Roles)
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.JSON(instance)
}

// Reject godoc
// @Summary Reject the current step
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param decision body decisionRequest false "Rejection reason"
// @Success 200 {object} Instance
// @Failure 403 {object} map[string]string "Role not permitted"
// @Failure 404 {object} map[string]string "Approval instance not found"
// @Failure 409 {object} map[string]string "Step already decided"
// @Router /api/events/{id}/approval/reject [post]
func (c *ApprovalController) Reject(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var input decisionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&input); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	instance, err := c.Service.Reject(ctx.UserContext(), ctx.Params("id"), claims.UserID, claims.Roles, input.Reason)
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.JSON(instance)
}

// AddComment godoc
// @Summary Comment on an approval
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param comment body commentRequest true "Comment"
// @Success 201 {object} Comment
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Approval instance or parent comment not found"
// @Router /api/events/{id}/approval/comments [post]
func (c *ApprovalController) AddComment(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var input commentRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	comment, err := c.Service.AddComment(ctx.UserContext(), ctx.Params("id"), claims.UserID, input.Text, input.ParentCommentID)
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(comment)
}

// RemoveComment godoc
// @Summary Remove a comment
// @Description Remove a comment. Only its author or an admin may remove it; replies are kept without a parent.
// @Tags approvals
// @Param id path string true "Event ID"
// @Param commentId path string true "Comment ID"
// @Success 204 {object} nil "No Content"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Comment not found"
// @Router /api/events/{id}/approval/comments/{commentId} [delete]
func (c *ApprovalController) RemoveComment(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	err := c.Service.RemoveComment(ctx.UserContext(), ctx.Params("id"), ctx.Params("commentId"), claims.UserID, claims.Roles)
	if err != nil {
		return apperror.Respond(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
