/*
Package realtime contains the core logic for live message delivery.

This file defines the event envelope exchanged over websocket connections and the
payload structures for presence, typing, and message notifications.
*/
package realtime

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of a realtime event frame.
type EventType string

const (
	// EventPresence carries the full set of currently online identities.
	// It is resent in full on every connect and disconnect; clients replace
	// their local list rather than applying a diff.
	EventPresence EventType = "presence"

	// EventTypingStarted and EventTypingStopped are ephemeral signals relayed
	// to all of the receiver's connections. They are never persisted.
	EventTypingStarted EventType = "typing.started"
	EventTypingStopped EventType = "typing.stopped"

	// Message lifecycle events pushed after the corresponding mutation commits.
	EventMessageCreated EventType = "message.created"
	EventMessageUpdated EventType = "message.updated"
	EventMessageDeleted EventType = "message.deleted"
	EventMessageRead    EventType = "message.read"

	// EventConversationsUpdated carries a party's refreshed recent-conversations
	// snapshot (last message previews and unread counts).
	EventConversationsUpdated EventType = "conversations.updated"

	// EventError reports a per-connection protocol problem back to the client.
	EventError EventType = "error"
)

// Event is the envelope for every frame the server pushes to a client.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewEvent builds an Event envelope with the current server timestamp.
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// PresencePayload lists every identity currently holding at least one live
// connection.
type PresencePayload struct {
	Online []string `json:"online"`
}

// TypingPayload identifies who is typing to the receiving client.
type TypingPayload struct {
	From string `json:"from"`
}

// ErrorPayload reports a business error code and message over the socket.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// inboundFrame is the shape of frames clients send to the server. Only typing
// signals arrive this way; message mutations go through the REST surface.
type inboundFrame struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// typingFrame is the client payload for typing.started / typing.stopped.
type typingFrame struct {
	To string `json:"to"`
}
