package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"github.com/gorilla/websocket"
)

const writeWait = 200 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans snapshots out to connected WebSocket clients. A client whose
// write fails or times out is dropped.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool), log: log}
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (*Hub) Name() string {
	return "websocket"
}

// Publish broadcasts a snapshot as a JSON text message
func (h *Hub) Publish(_ context.Context, snapshot monitor.Snapshot) error {
	clients := h.snapshot()
	if len(clients) == 0 {
		return nil
	}

	b, err := json.Marshal(snapshot)
	if err != nil {
		return errors.New().Wrap(ErrEncode, err)
	}

	for _, c := range clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("Dropping WebSocket client")
			_ = c.Close()
			h.remove(c)
		}
	}

	return nil
}

// Close disconnects every client
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		_ = c.Close()
		h.remove(c)
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	h.add(conn)
	defer func() {
		h.remove(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
