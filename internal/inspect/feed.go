package inspect

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fiber/pkg/protocol"
)

// Feed streams encoded protocol frames to WebSocket clients. Each commit
// frame is sent as one binary message.
type Feed struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
	last     []byte
}

// NewFeed creates an empty feed.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local debugging tool
			},
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection and registers it as a client until
// it disconnects. A client that joins late first receives the most recent
// frame.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := f.upgrader.Upgrade(w, req, nil)
	if err != nil {
		f.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = true
	last := f.last
	f.mu.Unlock()

	if last != nil {
		if err := conn.WriteMessage(websocket.BinaryMessage, last); err != nil {
			f.drop(conn)
			return
		}
	}

	// Clients never send anything meaningful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.drop(conn)
}

// Publish sends frame to every client. A nil frame is ignored.
func (f *Feed) Publish(frame *protocol.Frame) {
	if frame == nil {
		return
	}
	data := frame.Encode()

	f.mu.Lock()
	f.last = data
	clients := make([]*websocket.Conn, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.Unlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.BinaryMessage, data); err != nil {
			f.logger.Debug("dropping feed client", "error", err)
			f.drop(client)
		}
	}
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.clients, conn)
	f.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close closes all client connections.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for client := range f.clients {
		client.Close()
		delete(f.clients, client)
	}
}
