package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/kuvia/kuvia/internal/logging"
)

// ReloadMessage asks connected pages to reload.
var ReloadMessage = []byte("reload")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	clientBuffer = 16
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans live reload messages out to websocket clients. A single Run
// goroutine owns the client set.
type Hub struct {
	logger     logging.Logger
	register   chan *client
	unregister chan string
	broadcast  chan []byte
	done       chan struct{}
	doneOnce   sync.Once
	count      atomic.Int32
	handlers   sync.WaitGroup
}

// NewHub creates a hub. Run must be called for clients to be served.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Hub{
		logger:     logger.WithComponent("livereload"),
		register:   make(chan *client),
		unregister: make(chan string),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Run serves clients until ctx is cancelled, then disconnects all of them.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[string]*client)
	defer func() {
		h.doneOnce.Do(func() { close(h.done) })
		for id, c := range clients {
			close(c.send)
			delete(clients, id)
		}
		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			clients[c.id] = c
			h.count.Store(int32(len(clients)))
			h.logger.Debug(ctx, "Client connected", "client", c.id, "total", len(clients))

		case id := <-h.unregister:
			if c, ok := clients[id]; ok {
				delete(clients, id)
				close(c.send)
				h.count.Store(int32(len(clients)))
				h.logger.Debug(ctx, "Client disconnected", "client", id, "total", len(clients))
			}

		case message := <-h.broadcast:
			for id, c := range clients {
				select {
				case c.send <- message:
				default:
					// Slow client; it reconnects and reloads anyway.
					delete(clients, id)
					close(c.send)
				}
			}
			h.count.Store(int32(len(clients)))
		}
	}
}

// Broadcast sends message to every connected client. It returns without
// sending once the hub has stopped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Wait blocks until every websocket handler has returned.
func (h *Hub) Wait() {
	h.handlers.Wait()
}

// ServeHTTP upgrades the request and keeps the connection until the client
// leaves or the hub stops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handlers.Add(1)
	defer h.handlers.Done()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	h.writePump(conn.CloseRead(context.Background()), c)
}

// writePump delivers messages to one client. ctx ends when the peer closes
// the connection.
func (h *Hub) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	leave := func() {
		select {
		case h.unregister <- c.id:
		case <-h.done:
		}
	}

	for {
		select {
		case <-ctx.Done():
			leave()
			c.conn.CloseNow()
			return

		case message, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				leave()
				c.conn.CloseNow()
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				leave()
				c.conn.CloseNow()
				return
			}
		}
	}
}
