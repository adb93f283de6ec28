// internal/server/hub.go
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"makesite/internal/logfields"
)

// reloadMessage tells connected pages to reload themselves.
const reloadMessage = "reload"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local preview only; any page served by us may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks live-reload clients and broadcasts reload notices to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	h.logger.Debug("Live-reload client connected", logfields.Count(len(h.clients)))
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
		h.logger.Debug("Live-reload client disconnected", logfields.Count(len(h.clients)))
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast sends message to every client. Clients that cannot be written
// to are dropped.
func (h *Hub) broadcast(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
			h.logger.Debug("Dropping live-reload client", logfields.Error(err))
			_ = client.Close()
			delete(h.clients, client)
		}
	}
}

// closeAll disconnects every client.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.Close()
		delete(h.clients, client)
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the peer goes away. Clients never send anything we act on.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", logfields.Error(err))
		return
	}
	h.register(conn)
	defer h.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
