package approval

import (
	"net/http/httptest"
	"strings"
	"testing"

	"campus-events/internal/config"
	"campus-events/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvalApp(f *fixture) *fiber.App {
	app := fiber.New()
	cfg := &config.Config{DefaultTenant: "rpi", AdminRole: "admin"}
	NewApprovalApi(NewApprovalController(f.service), cfg).Setup(app)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body, userID string, roles ...string) int {
	t.Helper()
	token, err := utils.GenerateToken(userID, "rpi", roles)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestSaveFlowRequiresAdmin(t *testing.T) {
	f := newFixture(nil)
	app := approvalApp(f)
	body := `{"steps":[{"role":"safety","criteria":{"minAttendees":100}}]}`

	status := send(t, app, fiber.MethodPut, "/api/approvals/flow", body, "u-fac", "facilities")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Empty(t, f.audit.actions, "rejected before the flow is touched")

	status = send(t, app, fiber.MethodGet, "/api/approvals/flow", "", "u-fac", "facilities")
	assert.Equal(t, fiber.StatusOK, status)

	status = send(t, app, fiber.MethodPut, "/api/approvals/flow", body, "u-admin", "admin")
	assert.Equal(t, fiber.StatusOK, status)

	flow, err := f.service.GetFlow(f.ctx)
	require.NoError(t, err)
	require.Len(t, flow.Steps, 1)
	assert.Equal(t, "u-admin", flow.UpdatedBy)
}

func TestRemoveCommentRoute(t *testing.T) {
	f := newFixture(campusFlow())
	app := approvalApp(f)
	eventID, _ := f.createFor(t, gymAndCrowd)

	comment, err := f.service.AddComment(f.ctx, eventID, "u1", "Is the gym free?", "")
	require.NoError(t, err)
	path := "/api/events/" + eventID + "/approval/comments/" + comment.ID.Hex()

	assert.Equal(t, fiber.StatusForbidden, send(t, app, fiber.MethodDelete, path, "", "u2", "facilities"))
	assert.Equal(t, fiber.StatusNoContent, send(t, app, fiber.MethodDelete, path, "", "u1"))
	assert.Equal(t, fiber.StatusNotFound, send(t, app, fiber.MethodDelete, path, "", "u1"))
}
