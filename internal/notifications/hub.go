package notifications

import (
	"context"
	"errors"
	"sync"

	"connecto/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

var (
	// ErrHubClosed is returned by Register after Shutdown.
	ErrHubClosed = errors.New("notification hub is shut down")
	// ErrTooManyConnections is returned when a connection limit is reached.
	ErrTooManyConnections = errors.New("connection limit reached")
)

// Hub maps user IDs to their open notification sockets and delivers payloads
// received from the Notifier.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for userID.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrTooManyConnections
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrTooManyConnections
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.total++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// Unregister removes client and closes its send buffer. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	h.total--
	observability.WebSocketConnections.Dec()
	close(client.Send)
}

// Broadcast queues payload on every connection of userID.
func (h *Hub) Broadcast(userID uint, payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data := []byte(payload)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring subscribes to every user channel and forwards payloads to the
// matching connections until ctx is done.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, h.Broadcast)
}

// Shutdown closes every send buffer, which makes each WritePump send a close
// frame, and rejects further registrations.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for userID, clients := range h.conns {
		for c := range clients {
			close(c.Send)
			observability.WebSocketConnections.Dec()
		}
		delete(h.conns, userID)
	}
	h.total = 0
	return nil
}
