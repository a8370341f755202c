/*
Package realtime contains the core logic for live message delivery.

This file defines the Hub struct, which owns the connection registry and the index of
live Client instances. It handles connect/disconnect bookkeeping, presence broadcasts,
and typing relays, and implements the push capability used by the fan-out dispatcher.
*/
package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"deskhub/internal/pkg/logx"
)

// Hub coordinates every live websocket session in the process. It keeps the
// identity-level bookkeeping in the Registry and a flat connection-id index
// for routing pushes to individual sockets.
type Hub struct {
	// registry tracks identity -> connection-id ownership.
	registry *Registry

	// clients indexes live Client instances by connection id.
	clients map[string]*Client

	// mu protects concurrent access to the clients map.
	mu sync.RWMutex

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub with an empty registry. The Hub's lifetime is the
// server process; handlers receive it by shared reference.
func NewHub() *Hub {
	return &Hub{
		registry: NewRegistry(),
		clients:  make(map[string]*Client),
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Registry exposes the hub's connection registry for the fan-out dispatcher.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Register records a freshly upgraded client and announces the updated online
// set to everyone. The client is authenticated before it reaches the hub; an
// unauthenticated socket never gets this far.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.connID] = c
	h.mu.Unlock()

	h.registry.Add(c.identity, c.connID)

	h.logger.Info().
		Str("identity", c.identity).
		Str("conn_id", c.connID).
		Int("identity_conns", h.registry.ConnectionCount(c.identity)).
		Msg("Client registered.")

	h.BroadcastPresence()
}

// Unregister removes the client's connection and, if it was the identity's last
// one, drops the identity from the online set. A stale or duplicate disconnect
// is a no-op: the registry removal tolerates pairs that were never added, and
// the clients index is only cleared when it still points at this client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.connID]
	if ok && current == c {
		delete(h.clients, c.connID)
	}
	h.mu.Unlock()

	if !ok || current != c {
		h.logger.Debug().
			Str("conn_id", c.connID).
			Msg("Ignoring unregister for stale or unknown connection.")
		return
	}

	h.registry.Remove(c.identity, c.connID)

	h.logger.Info().
		Str("identity", c.identity).
		Str("conn_id", c.connID).
		Int("identity_conns", h.registry.ConnectionCount(c.identity)).
		Msg("Client unregistered.")

	h.BroadcastPresence()
}

// BroadcastPresence recomputes the online-identity snapshot and pushes it to
// literally every connected client. The full set is resent each time; no
// diffing is performed, and delivery is best-effort per connection.
func (h *Hub) BroadcastPresence() {
	event := NewEvent(EventPresence, PresencePayload{
		Online: h.registry.OnlineIdentities(),
	})

	for _, c := range h.snapshotClients() {
		c.Enqueue(event)
	}
}

// NotifyTyping relays a "started typing" signal from sender to every live
// connection of receiver. If the receiver is offline, the call is a silent
// no-op; typing signals are never queued or retried.
func (h *Hub) NotifyTyping(sender, receiver string) {
	h.relayTyping(EventTypingStarted, sender, receiver)
}

// NotifyStoppedTyping relays a "stopped typing" signal from sender to every
// live connection of receiver.
func (h *Hub) NotifyStoppedTyping(sender, receiver string) {
	h.relayTyping(EventTypingStopped, sender, receiver)
}

func (h *Hub) relayTyping(eventType EventType, sender, receiver string) {
	event := NewEvent(eventType, TypingPayload{From: sender})

	for _, connID := range h.registry.Connections(receiver) {
		h.Push(connID, eventType, event.Payload)
	}
}

// Push queues an event for one specific connection. It is fire-and-forget: an
// unknown connection id (the socket is already gone) or a full send queue drops
// the event without surfacing an error to the caller.
func (h *Hub) Push(connID string, eventType EventType, payload any) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug().
			Str("conn_id", connID).
			Str("event", string(eventType)).
			Msg("Push target connection no longer present, dropping event.")
		return
	}

	c.Enqueue(NewEvent(eventType, payload))
}

// snapshotClients copies the current client set so pushes happen outside the
// hub lock. Slow client delivery must never extend lock hold time.
func (h *Hub) snapshotClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// Shutdown closes every live client connection. Presence state is not saved;
// it is rebuilt as clients reconnect after restart.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub, closing all client connections...")

	for _, c := range h.snapshotClients() {
		c.CloseSend()
	}

	h.mu.Lock()
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	h.logger.Info().Msg("Hub shutdown complete.")
}
