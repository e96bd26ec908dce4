package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/pkg/logging"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, any popup may connect
	},
}

// Hub pushes automation events to every connected websocket client.
type Hub struct {
	log *logging.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

var _ messaging.Notifier = (*Hub)(nil)

func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Handle upgrades the request and keeps the client registered until it
// disconnects.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("failed to upgrade websocket connection", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("websocket client connected", "total", total)

	defer h.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("⚠️ websocket error", "err", err)
			}
			return
		}
	}
}

// Notify broadcasts ev. Clients that cannot be written to are dropped.
func (h *Hub) Notify(ev messaging.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode event", "action", ev.Action, "err", err)
		return
	}

	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, mu := range h.clients {
		targets[conn] = mu
	}
	h.mu.RUnlock()

	for conn, mu := range targets {
		mu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, data)
		mu.Unlock()
		if err != nil {
			h.log.Debug("dropping websocket client", "err", err)
			h.remove(conn)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	remaining := len(h.clients)
	h.mu.Unlock()

	if ok {
		conn.Close()
		h.log.Debug("websocket client disconnected", "remaining", remaining)
	}
}
