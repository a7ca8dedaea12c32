// Package relay fans raw MAVLink wire bytes out to a set of subscribing
// TCP clients. It generalizes the teacher's
// internal/hub.Hub (which broadcast raw can.Frame values to CAN-bus
// clients) to a byte-slice payload, since a relay subscriber here wants
// the wire bytes of a MAVLink frame rather than a decoded struct.
package relay

import (
	"sync"

	"github.com/kstaniek/mavlink-go/internal/logging"
	"github.com/kstaniek/mavlink-go/internal/metrics"
)

// BackpressurePolicy selects what happens when a subscriber's outbound
// queue is full: drop the frame silently, or kick the subscriber.
type BackpressurePolicy int

const (
	PolicyDrop BackpressurePolicy = iota
	PolicyKick
)

// Client is one subscriber's outbound queue.
type Client struct {
	Out       chan []byte
	Closed    chan struct{}
	closeOnce sync.Once
}

// Close signals the client is closed (idempotent).
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Closed)
	})
}

// Hub tracks subscribers and fans out frame bytes to all of them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	OutBufSize int
	Policy     BackpressurePolicy
}

// New creates a Hub with default settings.
func New() *Hub { return &Hub{clients: make(map[*Client]struct{})} }

// Add registers a client with the hub.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	prev := len(h.clients)
	h.clients[c] = struct{}{}
	cur := len(h.clients)
	h.mu.Unlock()
	if prev == 0 && cur == 1 {
		logging.L().Info("relay_first_subscriber")
	}
	metrics.SetRelayClients(cur)
}

// Remove unregisters a client; safe to call multiple times.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	_, existed := h.clients[c]
	if existed {
		delete(h.clients, c)
	}
	cur := len(h.clients)
	h.mu.Unlock()
	select {
	case <-c.Closed:
	default:
		c.Close()
	}
	metrics.SetRelayClients(cur)
	if existed && cur == 0 {
		logging.L().Info("relay_last_subscriber_gone")
	}
}

// Broadcast sends wire-encoded frame bytes to every subscriber, honoring
// the configured backpressure policy for subscribers that fall behind.
func (h *Hub) Broadcast(frame []byte) {
	clients := h.Snapshot()
	metrics.SetRelayFanout(len(clients))
	for _, c := range clients {
		select {
		case c.Out <- frame:
		default:
			if h.Policy == PolicyKick {
				metrics.IncRelayKick()
				c.Close()
			} else {
				metrics.IncRelayDrop()
			}
		}
	}
}

// Snapshot returns a slice copy of the current subscriber set.
func (h *Hub) Snapshot() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	return clients
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int { h.mu.RLock(); n := len(h.clients); h.mu.RUnlock(); return n }
