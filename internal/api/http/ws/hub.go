// Package ws tracks live WebSocket connections of download clients.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dtroode/audiograb-server/internal/model"
)

const writeWait = 10 * time.Second

// Conn is a registered client connection. Writes are serialised, so a Conn
// can be shared between the request goroutine and the downloader.
type Conn struct {
	ID   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

var _ model.ProgressSink = (*Conn)(nil)

// Send writes event as a JSON text message.
func (c *Conn) Send(ctx context.Context, event model.Event) error {
	return c.WriteJSON(ctx, event)
}

// WriteJSON writes v as a JSON text message.
func (c *Conn) WriteJSON(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Close sends a normal closure frame and closes the connection. It is safe to
// call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

// Hub is the registry of active connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Conn)}
}

// Register adds conn to the registry under a fresh id.
func (h *Hub) Register(conn *websocket.Conn) *Conn {
	c := &Conn{ID: uuid.NewString(), conn: conn}

	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()

	return c
}

// Unregister removes c from the registry and closes it.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c.ID)
	h.mu.Unlock()

	c.Close()
}

// Count returns the number of active connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// CloseAll closes every active connection and empties the registry.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*Conn)
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
