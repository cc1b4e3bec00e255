package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campus-events/internal/common/apperror"
	"campus-events/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var defaultTarget = &config.TenantTarget{URI: "mongodb://localhost:27017", Database: "campus-events"}

// fakeDialer hands out unconnected clients; mongo.Connect does not touch the network.
type fakeDialer struct {
	calls   atomic.Int32
	delay   time.Duration
	failFor atomic.Int32 // number of upcoming calls that fail
	mu      sync.Mutex
	targets []config.TenantTarget
}

func (f *fakeDialer) Dial(ctx context.Context, target config.TenantTarget) (*mongo.Client, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.targets = append(f.targets, target)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failFor.Load() > 0 {
		f.failFor.Add(-1)
		return nil, errors.New("server selection timeout")
	}
	return mongo.Connect(ctx, options.Client().ApplyURI(target.URI))
}

func newTestRegistry(t *testing.T, dir Directory, dialer *fakeDialer) *Registry {
	t.Helper()
	r := New(dir, dialer.Dial, zap.NewNop())
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

func TestResolveReturnsSameConnection(t *testing.T) {
	dialer := &fakeDialer{}
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), dialer)

	first, err := r.Resolve(context.Background(), "rpi")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), "rpi")
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
	assert.Equal(t, int32(1), dialer.calls.Load())
}

func TestResolveSeparatesTenants(t *testing.T) {
	dialer := &fakeDialer{}
	dir := NewStaticDirectory(map[string]config.TenantTarget{
		"rpi":      {URI: "mongodb://localhost:27017/rpi", Database: "rpi"},
		"berkeley": {URI: "mongodb://localhost:27017/berkeley", Database: "berkeley"},
	}, defaultTarget)
	r := newTestRegistry(t, dir, dialer)

	rpi, err := r.Resolve(context.Background(), "rpi")
	require.NoError(t, err)
	berkeley, err := r.Resolve(context.Background(), "berkeley")
	require.NoError(t, err)

	assert.NotSame(t, rpi, berkeley)
	assert.Equal(t, "rpi", rpi.DB.Name())
	assert.Equal(t, "berkeley", berkeley.DB.Name())
	assert.Equal(t, []string{"berkeley", "rpi"}, r.Tenants())
}

func TestResolveUnmappedTenantUsesDefault(t *testing.T) {
	dialer := &fakeDialer{}
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), dialer)

	conn, err := r.Resolve(context.Background(), "unknown-tenant")
	require.NoError(t, err)
	assert.Equal(t, *defaultTarget, conn.Target)
	assert.Equal(t, "campus-events", conn.DB.Name())
}

func TestResolveWithoutDefaultIsConfigurationError(t *testing.T) {
	dialer := &fakeDialer{}
	r := newTestRegistry(t, NewStaticDirectory(nil, nil), dialer)

	_, err := r.Resolve(context.Background(), "unknown-tenant")
	assert.ErrorIs(t, err, apperror.ErrConfiguration)
	assert.Equal(t, int32(0), dialer.calls.Load())
}

func TestResolveEmptyTenant(t *testing.T) {
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), &fakeDialer{})

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrConfiguration)
}

func TestResolveDoesNotCacheFailures(t *testing.T) {
	dialer := &fakeDialer{}
	dialer.failFor.Store(1)
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), dialer)

	_, err := r.Resolve(context.Background(), "rpi")
	require.Error(t, err)
	assert.Empty(t, r.Tenants())

	conn, err := r.Resolve(context.Background(), "rpi")
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, int32(2), dialer.calls.Load())
}

func TestResolveConcurrentFirstRequestsDialOnce(t *testing.T) {
	dialer := &fakeDialer{delay: 20 * time.Millisecond}
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), dialer)

	const callers = 32
	conns := make([]*Connection, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			conn, err := r.Resolve(context.Background(), "berkeley")
			assert.NoError(t, err)
			conns[i] = conn
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), dialer.calls.Load())
	for _, conn := range conns {
		assert.Same(t, conns[0], conn)
	}
}

func TestResolveSurvivesCallerCancellation(t *testing.T) {
	dialer := &fakeDialer{}
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), dialer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn, err := r.Resolve(ctx, "rpi")
	require.NoError(t, err)
	assert.Equal(t, "rpi", conn.Tenant)
}

func TestCloseEmptiesRegistry(t *testing.T) {
	dialer := &fakeDialer{}
	r := New(NewStaticDirectory(nil, defaultTarget), dialer.Dial, zap.NewNop())

	_, err := r.Resolve(context.Background(), "rpi")
	require.NoError(t, err)
	require.NoError(t, r.Close(context.Background()))
	assert.Empty(t, r.Tenants())
	assert.Zero(t, r.Clients())
}

func TestUnmappedTenantsShareOneClient(t *testing.T) {
	dialer := &fakeDialer{}
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), dialer)

	const tenants = 50
	var first *Connection
	for i := 0; i < tenants; i++ {
		conn, err := r.Resolve(context.Background(), fmt.Sprintf("junk-%d", i))
		require.NoError(t, err)
		if first == nil {
			first = conn
			continue
		}
		assert.NotSame(t, first, conn)
		assert.Same(t, first.Client, conn.Client)
	}

	assert.Equal(t, int32(1), dialer.calls.Load())
	assert.Equal(t, 1, r.Clients())
	assert.Len(t, r.Tenants(), tenants)
}

func TestConcurrentTenantsOnOneURIDialOnce(t *testing.T) {
	dialer := &fakeDialer{delay: 20 * time.Millisecond}
	r := newTestRegistry(t, NewStaticDirectory(nil, defaultTarget), dialer)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), fmt.Sprintf("tenant-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), dialer.calls.Load())
	assert.Equal(t, 1, r.Clients())
}
