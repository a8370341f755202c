/*
Package realtime contains the core logic for live message delivery: the connection
registry, the websocket hub, presence and typing notifications, and the fan-out
dispatcher that pushes committed message events to both conversation parties.

This file defines the Registry struct, the authoritative in-process record of which
websocket connections belong to which user identity.
*/
package realtime

import (
	"sync"
)

// Registry maps a user identity to the set of its currently live connection ids.
// A user with several open tabs or devices owns several connections under the
// same identity. All state is in-memory; it is rebuilt from scratch as clients
// reconnect after a restart.
type Registry struct {
	// mu guards the whole conns map. One registry-wide lock keeps
	// OnlineIdentities atomic with respect to concurrent adds and removes.
	mu sync.RWMutex

	// conns maps identity -> set of connection ids.
	conns map[string]map[string]struct{}
}

// NewRegistry constructs and returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]map[string]struct{}),
	}
}

// Add registers connID under identity, creating the identity entry on its first
// connection. Adding the same pair twice is a no-op (set semantics).
func (r *Registry) Add(identity, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[identity]
	if !ok {
		set = make(map[string]struct{})
		r.conns[identity] = set
	}
	set[connID] = struct{}{}
}

// Remove drops connID from identity's set. When the last connection goes, the
// identity entry is deleted entirely so no empty set is left dangling. Removing
// a pair that was never added is a no-op, so disconnect handling is safe even
// if the connection dropped mid-handshake.
func (r *Registry) Remove(identity, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[identity]
	if !ok {
		return
	}

	delete(set, connID)

	if len(set) == 0 {
		delete(r.conns, identity)
	}
}

// Connections returns a copy of identity's live connection ids. An unknown
// identity yields an empty slice: the user is simply offline, delivery is
// skipped rather than queued or errored.
func (r *Registry) Connections(identity string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[identity]

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// OnlineIdentities returns every identity that currently holds at least one
// live connection. The result is a point-in-time snapshot used for presence
// broadcasts; it is recomputed on every call, never cached.
func (r *Registry) OnlineIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]string, 0, len(r.conns))
	for identity := range r.conns {
		identities = append(identities, identity)
	}
	return identities
}

// ConnectionCount reports how many live connections identity currently owns.
func (r *Registry) ConnectionCount(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns[identity])
}
