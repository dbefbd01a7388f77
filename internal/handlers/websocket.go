package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/roomly/internal/middleware"
	ws "github.com/thereayou/roomly/internal/websocket"
)

// upgrader accepts any origin. TODO: restrict origin in production.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WebSocketHandler turns authenticated upgrade requests into registered
// hub clients.
type WebSocketHandler struct {
	hub            *ws.Hub
	messageHandler *MessageHandler
}

func NewWebSocketHandler(hub *ws.Hub, messageHandler *MessageHandler) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, messageHandler: messageHandler}
}

// HandleWebSocket upgrades the connection and starts the client pumps.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}

	client := ws.NewClient(h.hub, conn, userID.(uuid.UUID))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.messageHandler)
}
