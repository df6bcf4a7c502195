package handlers

import (
	"net/http"

	"setlist-sync/internal/infrastructure/websocket"

	"github.com/labstack/echo/v4"
)

type WebSocketHandler struct {
	handler  *websocket.Handler
	presence *websocket.PresenceRegistry
}

func NewWebSocketHandler(handler *websocket.Handler, presence *websocket.PresenceRegistry) *WebSocketHandler {
	return &WebSocketHandler{handler: handler, presence: presence}
}

func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	return h.handler.HandleConnection(c)
}

// ActiveUsers is a diagnostic surface listing every user with a live
// connection.
func (h *WebSocketHandler) ActiveUsers(c echo.Context) error {
	users := h.presence.ActiveUsers()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(users),
		"users": users,
	})
}
