package http

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/infrastructure/ws"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const hubTimeout = 5 * time.Second

// WSHandler expone el feed de eventos de stock y ventas.
type WSHandler struct {
	hub *ws.Hub
	log *logger.Logger
}

// NewWSHandler construye el handler.
func NewWSHandler(hub *ws.Hub, log *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log}
}

// RequireUpgrade responde 426 a peticiones que no son upgrade a WebSocket.
func (h *WSHandler) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream godoc
// @Summary      Feed de eventos (WebSocket)
// @Description  Emite stock.changed y sale.created como JSON. Token en Authorization o ?token=.
// @Tags         inventory
// @Security     Bearer
// @Param        token  query  string  false  "JWT"
// @Success      101
// @Failure      426  {object}  dto.ErrorResponse
// @Router       /api/ws/stock [get]
func (h *WSHandler) Stream() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals(LocalUserID).(string)

		ctx, cancel := context.WithTimeout(context.Background(), hubTimeout)
		h.hub.Register(ctx, c)
		cancel()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), hubTimeout)
			defer cancel()
			h.hub.Unregister(ctx, c)
		}()
		h.log.Debug().Str("user_id", userID).Msg("ws: suscripción abierta")

		// El cliente no envía datos; se lee solo para detectar el cierre.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
