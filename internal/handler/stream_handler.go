package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tradejournal/internal/middleware"
	"github.com/tradejournal/internal/service"
	"github.com/tradejournal/internal/stream"
)

// StreamHandler upgrades dashboard connections to websockets that
// receive live trade events as bots push them in
type StreamHandler struct {
	authService *service.AuthService
	hub         *stream.Hub
	upgrader    websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(authService *service.AuthService, hub *stream.Hub) *StreamHandler {
	return &StreamHandler{
		authService: authService,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard may be served from another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe attaches a dashboard to the live trade stream. Browsers
// cannot set headers on websocket handshakes, so the JWT travels as a
// query parameter.
// GET /api/v1/stream?token=<jwt>
func (h *StreamHandler) Subscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(401, gin.H{"error": "missing token"})
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		c.JSON(401, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		middleware.LogError("[Stream] upgrade failed for user %d: %v", claims.UserID, err)
		return
	}

	sub := h.hub.Register(claims.UserID, conn)
	defer h.hub.Unregister(sub)

	// Drain the connection; subscribers only listen. Returning on read
	// error is how we notice the client went away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// RegisterRoutes registers the stream route
func (h *StreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stream", h.Subscribe)
}
