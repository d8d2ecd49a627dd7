package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"watego/pkg/model"
)

const (
	streamWriteTimeout = 5 * time.Second
	// streamInterval throttles pushes below the tick rate; browsers do
	// not need 60 updates a second over the wire.
	streamInterval = 100 * time.Millisecond
	// streamSendBuffer is the per-client queue depth. A client that
	// falls further behind skips frames; snapshots supersede each other.
	streamSendBuffer = 8
)

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// StreamHandler pushes per-tick snapshots to connected WebSocket clients.
// It implements the scheduler's sink interface. Writes happen on a
// per-client goroutine so a congested socket never stalls the tick loop.
type StreamHandler struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*streamClient]struct{}
	lastPush time.Time
}

func NewStreamHandler() *StreamHandler {
	return &StreamHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same-host UI; the server binds to localhost by default.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*streamClient]struct{}),
	}
}

// Handle upgrades the connection and registers the client.
// GET /api/stream
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Stream: upgrade failed", "error", err)
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, streamSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("Stream: client connected", "clients", n)

	go h.writeLoop(c)

	// Drain control frames until the client goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(c)
				return
			}
		}
	}()
}

// Update implements core.TickSink. It is called from the scheduler's tick
// and must not block, so frames are handed to per-client queues; a full
// queue drops the frame for that client rather than waiting.
func (h *StreamHandler) Update(s *model.TickState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}
	now := time.Now()
	if now.Sub(h.lastPush) < streamInterval {
		return
	}
	h.lastPush = now

	data, err := json.Marshal(s)
	if err != nil {
		slog.Error("Stream: failed to marshal tick state", "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Queue full, client is not keeping up. Skip this frame;
			// the write deadline in writeLoop handles dead sockets.
		}
	}
}

func (h *StreamHandler) writeLoop(c *streamClient) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Info("Stream: client dropped", "error", err)
			h.drop(c)
			return
		}
	}
}

// Close disconnects all clients.
func (h *StreamHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

func (h *StreamHandler) drop(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}
