package system

import (
	"time"

	"campus-events/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type WebSocketController struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewWebSocketController(hub *Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{Hub: hub, Logger: logger}
}

// HandleWebSocket streams the approval updates of the connection's tenant.
// Incoming messages are read only to detect the close.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	tenantID, _ := c.Locals(middleware.TenantLocalsKey).(string)
	cl := h.Hub.register(tenantID)
	defer h.Hub.unregister(cl)

	h.Logger.Debug("Websocket client connected", zap.String("tenant", tenantID))

	done := make(chan struct{})
	go h.writeLoop(c, cl, done)

	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("Websocket read failed", zap.String("tenant", tenantID), zap.Error(err))
			}
			break
		}
	}
	close(done)
}

func (h *WebSocketController) writeLoop(c *websocket.Conn, cl *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-cl.send:
			if !ok {
				return
			}
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
