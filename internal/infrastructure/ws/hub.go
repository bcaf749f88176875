// Package ws difunde eventos de stock y ventas a los clientes WebSocket conectados (pantallas de caja y bodega).
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/pkg/logger"
)

var _ events.Publisher = (*Hub)(nil)

// ErrHubBusy se devuelve cuando la cola de difusión está llena.
var ErrHubBusy = errors.New("ws: cola de difusión llena")

const broadcastBuffer = 256

// Conn lo mínimo que el hub necesita de una conexión (*websocket.Conn lo cumple).
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub registra conexiones y les reenvía cada evento publicado.
type Hub struct {
	clients    map[Conn]bool
	register   chan Conn
	unregister chan Conn
	broadcast  chan []byte
	mu         sync.Mutex
	log        *logger.Logger
}

// NewHub crea el hub. Hay que arrancar Run en una goroutine.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[Conn]bool),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan []byte, broadcastBuffer),
		log:        log,
	}
}

// Run atiende registros, bajas y difusiones hasta que ctx se cancela; al salir cierra todas las conexiones.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				_ = c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("ws: cliente conectado")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				_ = c.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					_ = c.Close()
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register agrega una conexión. Bloquea hasta que Run la atiende o ctx termina.
func (h *Hub) Register(ctx context.Context, c Conn) {
	select {
	case h.register <- c:
	case <-ctx.Done():
	}
}

// Unregister quita y cierra una conexión.
func (h *Hub) Unregister(ctx context.Context, c Conn) {
	select {
	case h.unregister <- c:
	case <-ctx.Done():
	}
}

// Clients número de conexiones activas.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish serializa el evento a JSON y lo encola para difusión sin bloquear al llamador.
func (h *Hub) Publish(ctx context.Context, evt events.Event) error {
	msg, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrHubBusy
	}
}
