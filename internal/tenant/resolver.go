package tenant

import (
	"context"
	"fmt"

	"campus-events/internal/common/apperror"
	"campus-events/internal/metrics"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Schema describes how an entity is stored in a tenant database
type Schema struct {
	Name       string
	Collection string
	Indexes    []mongo.IndexModel
}

// Catalog is the set of entities the resolver can bind
type Catalog struct {
	schemas map[string]Schema
}

func NewCatalog(schemas []Schema) (*Catalog, error) {
	c := &Catalog{schemas: make(map[string]Schema, len(schemas))}
	for _, s := range schemas {
		if s.Name == "" || s.Collection == "" {
			return nil, fmt.Errorf("schema %q needs a name and a collection: %w", s.Name, apperror.ErrConfiguration)
		}
		if _, dup := c.schemas[s.Name]; dup {
			return nil, fmt.Errorf("schema %s registered twice: %w", s.Name, apperror.ErrConfiguration)
		}
		c.schemas[s.Name] = s
	}
	return c, nil
}

func (c *Catalog) Lookup(name string) (Schema, bool) {
	s, ok := c.schemas[name]
	return s, ok
}

// Model is an entity bound to one tenant's connection
type Model struct {
	Name       string
	Tenant     string
	Collection *mongo.Collection
}

// Models is the result of a bind, keyed by entity name
type Models map[string]*Model

// Collection returns the bound collection for name, or nil when it was not requested
func (m Models) Collection(name string) *mongo.Collection {
	if model, ok := m[name]; ok {
		return model.Collection
	}
	return nil
}

// Resolver binds entity names to models on a tenant connection. Schema
// registration runs once per (connection, entity).
type Resolver struct {
	catalog *Catalog
	logger  *zap.Logger
	ensure  func(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error
}

func NewResolver(catalog *Catalog, logger *zap.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logger,
		ensure:  ensureIndexes,
	}
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *Resolver) Bind(ctx context.Context, conn *Connection, names ...string) (Models, error) {
	models := make(Models, len(names))
	for _, name := range names {
		model, err := r.bind(ctx, conn, name)
		if err != nil {
			return nil, err
		}
		models[name] = model
	}
	return models, nil
}

func (r *Resolver) bind(ctx context.Context, conn *Connection, name string) (*Model, error) {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if model, ok := conn.models[name]; ok {
		return model, nil
	}

	schema, ok := r.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown model %s: %w", name, apperror.ErrConfiguration)
	}

	coll := conn.DB.Collection(schema.Collection)
	if err := r.ensure(ctx, coll, schema.Indexes); err != nil {
		return nil, fmt.Errorf("register %s on tenant %s: %w", name, conn.Tenant, err)
	}

	model := &Model{Name: name, Tenant: conn.Tenant, Collection: coll}
	conn.models[name] = model
	metrics.RecordModelRegistration(name)
	r.logger.Debug("Registered model", zap.String("tenant", conn.Tenant), zap.String("model", name))
	return model, nil
}
