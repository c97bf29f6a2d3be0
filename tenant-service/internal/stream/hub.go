// Package stream pushes tenant events to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/pubsub"
)

// Config tunes client connections.
type Config struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

// DefaultConfig returns the connection settings used when none are given.
func DefaultConfig() Config {
	return Config{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 512,
		SendBuffer:     64,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	return c
}

// Hub tracks connected clients per tenant. It receives events from the
// tenant dispatcher through HandleEvent.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // tenantID -> clients
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds c to its tenant's audience.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.TenantID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.TenantID] = set
	}
	set[c] = struct{}{}

	l := log.L()
	l.Debug().Str(log.FieldTenantID, c.TenantID).Int("clients", len(set)).Msg("stream client registered")
}

// Unregister removes c and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.TenantID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.TenantID)
	}
	close(c.send)
}

// Count returns the number of clients following tenantID.
func (h *Hub) Count(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenantID])
}

// HandleEvent forwards ev to the clients of the tenant it is about. Slow
// clients miss events rather than block the dispatcher.
func (h *Hub) HandleEvent(ctx context.Context, ev *pubsub.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[ev.Subject]
	if len(set) == 0 {
		return
	}

	l := log.Ctx(ctx)
	data, err := json.Marshal(ev)
	if err != nil {
		l.Error().Err(err).Str("event_type", ev.Type).Msg("failed to encode stream event")
		return
	}

	for c := range set {
		select {
		case c.send <- data:
		default:
			l.Warn().Str(log.FieldTenantID, ev.Subject).Str("event_type", ev.Type).Msg("stream client full, event dropped")
		}
	}
}
