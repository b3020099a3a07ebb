// Package websocket broadcasts run progress to connected browser clients.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"breakupscli/internal/config"
	"breakupscli/internal/operations"
	"breakupscli/pkg/contracts/domain"
)

// event is the wire format for every progress message.
type event struct {
	Type     string                    `json:"type"`
	RunID    string                    `json:"run_id,omitempty"`
	Client   string                    `json:"client,omitempty"`
	Snapshot *operations.StateSnapshot `json:"snapshot,omitempty"`
	Result   *domain.RunResult         `json:"result,omitempty"`
	At       time.Time                 `json:"at"`
}

// Hub fans run progress out to every connected client. It implements
// operations.ProgressSink, so it plugs straight into the pipeline. A client
// that cannot keep up is dropped rather than allowed to stall a run.
type Hub struct {
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	writeWait time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub with the configured buffer sizes.
func NewHub(logger *slog.Logger, cfg config.WebSocketConfig) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	writeWait := cfg.WriteWait
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeWait: writeWait,
		clients:   make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and serves it until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 32)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.InfoContext(r.Context(), "websocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("clients", h.ClientCount()))

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards inbound frames; the protocol is broadcast-only. It exits
// when the peer disconnects, which tears the client down.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.drop(c)
	}
}

// broadcast marshals the event once and queues it on every client. A client
// with a full queue is dropped.
func (h *Hub) broadcast(e event) {
	e.At = time.Now()
	msg, err := json.Marshal(e)
	if err != nil {
		h.logger.Warn("failed to marshal progress event",
			slog.String("type", e.Type),
			slog.String("error", err.Error()))
		return
	}

	// Sends happen under the read lock so no queue can be closed mid-send;
	// drop takes the write lock before closing.
	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client")
		h.drop(c)
	}
}

// RunStarted implements operations.ProgressSink.
func (h *Hub) RunStarted(runID, clientName string) {
	h.broadcast(event{Type: "run_started", RunID: runID, Client: clientName})
}

// StageChanged implements operations.ProgressSink.
func (h *Hub) StageChanged(snapshot operations.StateSnapshot) {
	h.broadcast(event{Type: "stage_changed", RunID: snapshot.RunID, Snapshot: &snapshot})
}

// RunFinished implements operations.ProgressSink.
func (h *Hub) RunFinished(runID string, result domain.RunResult) {
	h.broadcast(event{Type: "run_finished", RunID: runID, Result: &result})
}
