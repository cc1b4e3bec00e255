package system

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubPublishesToTenantOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	rpi := hub.register("rpi")
	mit := hub.register("mit")

	hub.Publish("rpi", map[string]string{"type": "approval.approved"})

	require.Len(t, rpi.send, 1)
	assert.Empty(t, mit.send)

	var got map[string]string
	require.NoError(t, json.Unmarshal(<-rpi.send, &got))
	assert.Equal(t, "approval.approved", got["type"])
}

func TestHubDropsForSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := hub.register("rpi")

	for i := 0; i < clientBuffer+5; i++ {
		hub.Publish("rpi", i)
	}
	assert.Len(t, c.send, clientBuffer)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := hub.register("rpi")
	assert.Equal(t, 1, hub.Clients("rpi"))

	hub.unregister(c)
	hub.unregister(c)
	assert.Equal(t, 0, hub.Clients("rpi"))

	_, open := <-c.send
	assert.False(t, open)

	// publishing with no clients is a no-op
	hub.Publish("rpi", "ignored")
}
