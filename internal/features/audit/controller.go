package audit

import (
	"fmt"
	"strconv"

	"campus-events/internal/common/apperror"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary List audit logs
// @Description List the audit trail of approval changes for the current tenant
// @Tags audit
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param module query string false "Entity name"
// @Param record_id query string false "Record ID"
// @Success 200 {array} models.AuditLog
// @Failure 400 {object} map[string]string "Invalid page or limit"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, err := positiveQuery(c, "page", 1)
	if err != nil {
		return apperror.Respond(c, err)
	}
	limit, err := positiveQuery(c, "limit", DefaultPageSize)
	if err != nil {
		return apperror.Respond(c, err)
	}
	limit = min(limit, MaxPageSize)

	filter := Filter{
		Module:   c.Query("module"),
		RecordID: c.Query("record_id"),
	}

	logs, err := ctrl.Service.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return apperror.Respond(c, err)
	}

	return c.JSON(logs)
}

func positiveQuery(c *fiber.Ctx, key string, fallback int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", key, apperror.ErrInvalid)
	}
	return n, nil
}
