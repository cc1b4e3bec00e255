package tenant

import (
	"context"
	"fmt"

	"campus-events/internal/common/apperror"
)

// ModelSource is the only way repositories reach tenant storage
type ModelSource interface {
	Models(ctx context.Context, names ...string) (Models, error)
}

// Router resolves the tenant bound to a request and binds the requested models
type Router struct {
	registry *Registry
	resolver *Resolver
}

func NewRouter(registry *Registry, resolver *Resolver) *Router {
	return &Router{registry: registry, resolver: resolver}
}

// Models returns e.g. Models(ctx, "Event", "User") for the tenant in ctx
func (r *Router) Models(ctx context.Context, names ...string) (Models, error) {
	tenantID, ok := FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant bound to request: %w", apperror.ErrConfiguration)
	}

	conn, err := r.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return r.resolver.Bind(ctx, conn, names...)
}
