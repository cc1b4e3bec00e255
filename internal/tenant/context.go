package tenant

import (
	"context"

	common_models "campus-events/internal/common/models"
)

// WithTenant binds a tenant identifier to ctx
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, common_models.TenantIDKey, tenantID)
}

// FromContext returns the tenant bound to ctx, if any
func FromContext(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}
