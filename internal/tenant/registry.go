package tenant

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"campus-events/internal/common/apperror"
	"campus-events/internal/config"
	"campus-events/internal/database"
	"campus-events/internal/metrics"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Dialer opens a client for a tenant's storage target
type Dialer func(ctx context.Context, target config.TenantTarget) (*mongo.Client, error)

// DialMongo is the production Dialer
func DialMongo(ctx context.Context, target config.TenantTarget) (*mongo.Client, error) {
	return database.Dial(ctx, target.URI)
}

// Connection is a live handle to one tenant's database. It also caches the
// models bound on it. Tenants stored behind the same URI share Client.
type Connection struct {
	Tenant string
	Target config.TenantTarget
	Client *mongo.Client
	DB     *mongo.Database

	mu     sync.Mutex
	models map[string]*Model
}

// Registry owns exactly one Connection per tenant for the process lifetime,
// and one client per storage URI.
type Registry struct {
	directory Directory
	dial      Dialer
	logger    *zap.Logger

	mu      sync.RWMutex
	conns   map[string]*Connection
	clients map[string]*mongo.Client
	group   singleflight.Group
}

func New(directory Directory, dial Dialer, logger *zap.Logger) *Registry {
	return &Registry{
		directory: directory,
		dial:      dial,
		logger:    logger,
		conns:     make(map[string]*Connection),
		clients:   make(map[string]*mongo.Client),
	}
}

// NewRegistry wires the registry into the fx lifecycle
func NewRegistry(lc fx.Lifecycle, directory Directory, logger *zap.Logger) *Registry {
	r := New(directory, DialMongo, logger)
	lc.Append(fx.Hook{
		OnStop: r.Close,
	})
	return r
}

// Resolve returns the tenant's connection, opening it on first use. Concurrent
// first calls share one dial. A failed dial is not cached.
func (r *Registry) Resolve(ctx context.Context, tenantID string) (*Connection, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant identifier required: %w", apperror.ErrConfiguration)
	}
	if conn := r.cached(tenantID); conn != nil {
		return conn, nil
	}

	// The dial must not be cancelled by whichever caller happened to start it
	dialCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do("tenant:"+tenantID, func() (any, error) {
		if conn := r.cached(tenantID); conn != nil {
			return conn, nil
		}
		conn, err := r.open(dialCtx, tenantID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.conns[tenantID] = conn
		r.mu.Unlock()
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Connection), nil
}

func (r *Registry) cached(tenantID string) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[tenantID]
}

func (r *Registry) open(ctx context.Context, tenantID string) (*Connection, error) {
	target, err := r.directory.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	client, err := r.client(ctx, target)
	if err != nil {
		metrics.RecordConnectionFailure(tenantID)
		r.logger.Error("Failed to connect tenant database",
			zap.String("tenant", tenantID),
			zap.String("database", target.Database),
			zap.Error(err),
		)
		return nil, fmt.Errorf("connect tenant %s: %w", tenantID, err)
	}

	metrics.RecordConnectionOpened(tenantID)
	r.logger.Info("Connected tenant database",
		zap.String("tenant", tenantID),
		zap.String("database", target.Database),
	)

	return &Connection{
		Tenant: tenantID,
		Target: target,
		Client: client,
		DB:     client.Database(target.Database),
		models: make(map[string]*Model),
	}, nil
}

// client returns the shared client for target.URI, dialing it on first use
func (r *Registry) client(ctx context.Context, target config.TenantTarget) (*mongo.Client, error) {
	r.mu.RLock()
	client, ok := r.clients[target.URI]
	r.mu.RUnlock()
	if ok {
		return client, nil
	}

	v, err, _ := r.group.Do("uri:"+target.URI, func() (any, error) {
		r.mu.RLock()
		client, ok := r.clients[target.URI]
		r.mu.RUnlock()
		if ok {
			return client, nil
		}

		client, err := r.dial(ctx, target)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.clients[target.URI] = client
		r.mu.Unlock()
		metrics.RecordClientOpened()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*mongo.Client), nil
}

// Tenants lists the tenants with a live connection
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenants := make([]string, 0, len(r.conns))
	for id := range r.conns {
		tenants = append(tenants, id)
	}
	slices.Sort(tenants)
	return tenants
}

// Close disconnects every client and forgets every tenant
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	clients := r.clients
	r.conns = make(map[string]*Connection)
	r.clients = make(map[string]*mongo.Client)
	r.mu.Unlock()

	var firstErr error
	for uri, client := range clients {
		metrics.RecordClientClosed()
		if err := client.Disconnect(ctx); err != nil {
			r.logger.Warn("Failed to disconnect tenant storage", zap.String("database_uri_host", hostOf(uri)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Clients reports how many distinct storage clients are open
func (r *Registry) Clients() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// hostOf strips credentials and path from a URI for logging
func hostOf(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.Join(cs.Hosts, ",")
}
