// Package realtime pushes assessment events to browser tabs over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/careercompass/internal/assessment"
	"github.com/ashureev/careercompass/internal/metrics"
)

const (
	writeTimeout = 5 * time.Second
	// outboxSize bounds frames waiting for a slow client.
	outboxSize = 64
)

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Envelope is every server-to-client frame.
type Envelope struct {
	Type       string               `json:"type"`
	Event      *assessment.Event    `json:"event,omitempty"`
	Assessment *assessment.Snapshot `json:"assessment,omitempty"`
	Reason     string               `json:"reason,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Frame types.
const (
	FrameEvent    = "event"
	FrameSnapshot = "snapshot"
	FrameRejected = "rejected"
	FramePong     = "pong"
	FrameError    = "error"
)

// Client is a registered connection with its own outbound queue. All frames
// for a connection go through the queue, so they keep their order and a slow
// socket never blocks the publisher.
type Client struct {
	conn     Conn
	out      chan Envelope
	done     chan struct{}
	stopOnce sync.Once
}

func newClient(conn Conn) *Client {
	c := &Client{
		conn: conn,
		out:  make(chan Envelope, outboxSize),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Enqueue queues env for delivery. It never blocks and reports false when
// the client is gone or its queue is full.
func (c *Client) Enqueue(env Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- env:
		return true
	default:
		return false
	}
}

// Done is closed once the client stops writing.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case env := <-c.out:
			if err := Send(c.conn, env); err != nil {
				slog.Debug("Realtime write failed", "error", err, "frame", env.Type)
				c.stop()
				return
			}
		}
	}
}

func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Hub tracks one client per user and tab session.
type Hub struct {
	mu     sync.RWMutex
	active map[string]map[string]*Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		active: make(map[string]map[string]*Client),
	}
}

// Get returns the active client for a user and session.
func (h *Hub) Get(userID, sessionID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if sessions, ok := h.active[userID]; ok {
		return sessions[sessionID]
	}
	return nil
}

// Register adds a connection, closing any older one for the same tab.
func (h *Hub) Register(userID, sessionID string, conn Conn) *Client {
	client := newClient(conn)

	h.mu.Lock()
	if _, exists := h.active[userID]; !exists {
		h.active[userID] = make(map[string]*Client)
	}
	existing := h.active[userID][sessionID]
	h.active[userID][sessionID] = client
	h.mu.Unlock()

	if existing != nil {
		existing.stop()
		_ = existing.conn.Close(websocket.StatusNormalClosure, "session replaced")
	}
	metrics.RealtimeConnections.Inc()
	slog.Info("Realtime session registered", "user_id", userID, "session_id", sessionID)
	return client
}

// Unregister stops client and removes it if it is still the active one for
// the tab.
func (h *Hub) Unregister(userID, sessionID string, client *Client) {
	client.stop()
	metrics.RealtimeConnections.Dec()

	h.mu.Lock()
	defer h.mu.Unlock()
	if sessions, ok := h.active[userID]; ok {
		if current, exists := sessions[sessionID]; exists && current == client {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(h.active, userID)
			}
			slog.Info("Realtime session unregistered", "user_id", userID, "session_id", sessionID)
		}
	}
}

// Publish implements assessment.Publisher. It only queues the frame. Events
// for tabs without a live connection are dropped; a new connection starts
// from a snapshot.
func (h *Hub) Publish(userID, sessionID string, ev assessment.Event) {
	client := h.Get(userID, sessionID)
	if client == nil {
		return
	}
	if !client.Enqueue(Envelope{Type: FrameEvent, Event: &ev}) {
		slog.Warn("Realtime event dropped", "user_id", userID, "session_id", sessionID, "event", ev.Type)
	}
}

// CloseAll closes every connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	var clients []*Client
	for _, sessions := range h.active {
		for _, client := range sessions {
			clients = append(clients, client)
		}
	}
	h.active = make(map[string]map[string]*Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.stop()
		_ = client.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// Send writes one JSON frame.
func Send(conn Conn, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

var _ assessment.Publisher = (*Hub)(nil)
