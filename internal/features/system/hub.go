package system

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const clientBuffer = 32

type client struct {
	tenant string
	send   chan []byte
}

// Hub fans messages out to the websocket clients of one tenant. A client that
// falls behind loses messages rather than blocking the publisher.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]map[*client]struct{}),
	}
}

func (h *Hub) register(tenantID string) *client {
	c := &client{tenant: tenantID, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tenantID] == nil {
		h.clients[tenantID] = make(map[*client]struct{})
	}
	h.clients[tenantID][c] = struct{}{}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.tenant]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.tenant)
	}
}

// Publish sends payload as JSON to every client of tenantID
func (h *Hub) Publish(tenantID string, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode websocket message", zap.String("tenant", tenantID), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[tenantID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("Dropping websocket message for slow client", zap.String("tenant", tenantID))
		}
	}
}

// Clients returns the number of connected clients of tenantID
func (h *Hub) Clients(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenantID])
}
