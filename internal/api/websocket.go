package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goAuD/NanoServer/internal/infrastructure/logging"
)

// logSendBufferSize is the per-client outbound line buffer. A client that
// falls further behind than this starts losing lines rather than blocking
// the broadcaster.
const logSendBufferSize = 256

// logMessage is one log line delivered over the WebSocket.
type logMessage struct {
	Type      string `json:"type"`
	Line      string `json:"line"`
	Timestamp string `json:"timestamp"`
}

// upgrader configures the WebSocket upgrader. The API binds loopback, so
// origin checking is not load-bearing here.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// LogHub fans PHP server log lines out to connected WebSocket clients.
type LogHub struct {
	logger  *logging.Logger
	mu      sync.RWMutex
	clients map[*logClient]struct{}
}

// logClient is one connected log-stream consumer.
type logClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewLogHub creates an empty hub.
func NewLogHub(logger *logging.Logger) *LogHub {
	return &LogHub{
		logger:  logger,
		clients: make(map[*logClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects all clients.
func (h *LogHub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// Broadcast delivers one log line to every connected client. Safe to call
// from the supervisor's output-capture goroutine.
func (h *LogHub) Broadcast(line string) {
	msg := logMessage{
		Type:      "log",
		Line:      line,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal log message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer: drop the line for this client.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *LogHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// register adds a client to the hub.
func (h *LogHub) register(client *logClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("log stream client connected", "clients", h.ClientCount())
}

// unregister removes a client. Only the goroutine that removes the client
// from the map closes the send channel, preventing double-close panics.
func (h *LogHub) unregister(client *logClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("log stream client disconnected", "clients", h.ClientCount())
}

// handleLogStream upgrades the connection and streams log lines until the
// client disconnects.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &logClient{
		conn: conn,
		send: make(chan []byte, logSendBufferSize),
	}
	s.hub.register(client)

	go client.writePump()
	client.readPump(s.hub)
}

// writePump drains the send channel to the connection. Exits when the hub
// closes the channel.
func (c *logClient) writePump() {
	defer c.conn.Close() //nolint:errcheck // connection teardown

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	//nolint:errcheck // best-effort close frame
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump consumes control frames and detects disconnection. The log
// stream is one-way; inbound payloads are discarded.
func (c *logClient) readPump(hub *LogHub) {
	defer hub.unregister(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
