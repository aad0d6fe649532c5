package server

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tecu23/argo/pkg/engine"
	"github.com/tecu23/argo/pkg/events"
)

// EngineFactory builds one engine per connection, so sessions never share
// search state.
type EngineFactory func() engine.Engine

// Hub keeps track of all active connections. It registers and unregisters
// them as sockets come and go and tears every session down on shutdown.
type Hub struct {
	mu          sync.RWMutex         // Mutex to protect direct access to the connections map.
	connections map[*Connection]bool // Registered connections

	register   chan *Connection // Incoming registration
	unregister chan *Connection // Incoming unregistration
	done       chan struct{}

	newEngine EngineFactory
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewHub creates a new hub
func NewHub(newEngine EngineFactory, publisher *events.Publisher, logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		done:        make(chan struct{}),
		newEngine:   newEngine,
		publisher:   publisher,
		logger:      logger,
	}
}

// NewEngine builds an engine for one connection.
func (h *Hub) NewEngine() engine.Engine {
	return h.newEngine()
}

// ConnectionCount reports how many sessions are currently registered.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Run is the main execution of the hub
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.close()
	}
}

func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
		// The loop is gone; tear down directly.
		h.unregisterConnection(conn)
	}
}

// Shutdown cancels every session and stops the hub loop. Each session's
// teardown unregisters its own connection, which closes its send queue.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections))
	for conn := range h.connections {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.close()
	}
	close(h.done)
	h.logger.Info("hub shut down")
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn] = true
	h.logger.Info("connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("active", len(h.connections)))
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		close(conn.send)
		h.logger.Info("connection unregistered",
			zap.String("connection_id", conn.ID.String()),
			zap.Int("active", len(h.connections)))
	}
}
