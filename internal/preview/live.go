package preview

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long one client may stall a broadcast.
const writeWait = 5 * time.Second

// LiveServer pushes the preview markup to browsers over WebSocket. Every
// message is the complete HTML of the preview container.
type LiveServer struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	last    string

	// writeMu serializes writes; a connection allows one writer at a time.
	writeMu sync.Mutex
}

// NewLiveServer creates a live server.
func NewLiveServer(logger *slog.Logger) *LiveServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveServer{
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // preview only
			},
		},
	}
}

// HandleWebSocket upgrades the connection, sends the latest markup and keeps
// the client registered until it disconnects.
func (l *LiveServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := l.upgrader.Upgrade(w, req, nil)
	if err != nil {
		l.logger.Debug("live upgrade failed", "error", err)
		return
	}

	l.mu.Lock()
	l.clients[conn] = true
	last := l.last
	l.mu.Unlock()

	if last != "" {
		l.send(conn, []byte(last))
	}

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	l.drop(conn)
}

// Broadcast sends markup to every client and remembers it for clients that
// connect later. Unchanged markup is not resent.
func (l *LiveServer) Broadcast(markup string) {
	l.mu.Lock()
	if markup == l.last {
		l.mu.Unlock()
		return
	}
	l.last = markup
	clients := make([]*websocket.Conn, 0, len(l.clients))
	for client := range l.clients {
		clients = append(clients, client)
	}
	l.mu.Unlock()

	data := []byte(markup)
	for _, client := range clients {
		l.send(client, data)
	}
}

func (l *LiveServer) send(conn *websocket.Conn, data []byte) {
	l.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteMessage(websocket.TextMessage, data)
	l.writeMu.Unlock()
	if err != nil {
		l.logger.Debug("live client dropped", "error", err)
		l.drop(conn)
	}
}

func (l *LiveServer) drop(conn *websocket.Conn) {
	l.mu.Lock()
	_, ok := l.clients[conn]
	delete(l.clients, conn)
	l.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// Last returns the most recently broadcast markup.
func (l *LiveServer) Last() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

// ClientCount returns the number of connected clients.
func (l *LiveServer) ClientCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}

// Close closes all client connections.
func (l *LiveServer) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for client := range l.clients {
		client.Close()
		delete(l.clients, client)
	}
}
