/*
Package realtime contains the core logic for live message delivery.

This file defines the Dispatcher, the fan-out policy that pushes a committed message
event to every live connection of both conversation parties and follows it with a
refreshed recent-conversations snapshot for each side.
*/
package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"deskhub/internal/app/messaging"
	"deskhub/internal/pkg/logx"
)

// Pusher is the capability the dispatcher uses to deliver one event to one
// connection. Delivery is fire-and-forget; no result is consumed. The Hub is
// the production implementation.
type Pusher interface {
	Push(connID string, eventType EventType, payload any)
}

// ConversationSource recomputes a party's recent-conversations snapshot after
// a message mutation. The messaging repository is the production implementation.
type ConversationSource interface {
	RecentConversations(ctx context.Context, identity string) ([]messaging.ConversationSummary, error)
}

// ConversationsPayload wraps a recomputed recent-conversations snapshot for one
// party. It is pushed only to that party's own connections.
type ConversationsPayload struct {
	Conversations []messaging.ConversationSummary `json:"conversations"`
}

// MessagesReadPayload tells an original sender that the reader has marked all
// of their messages read.
type MessagesReadPayload struct {
	Reader string `json:"reader"`
}

// Dispatcher implements the message fan-out policy. It is invoked by the
// request-handling layer after a mutation commits; a delivery failure never
// rolls back or re-runs the underlying mutation.
type Dispatcher struct {
	registry      *Registry
	pusher        Pusher
	conversations ConversationSource
	logger        zerolog.Logger
}

// NewDispatcher constructs a Dispatcher over the given registry, push
// capability, and conversation source.
func NewDispatcher(registry *Registry, pusher Pusher, conversations ConversationSource) *Dispatcher {
	return &Dispatcher{
		registry:      registry,
		pusher:        pusher,
		conversations: conversations,
		logger:        logx.Logger().With().Str("component", "Dispatcher").Logger(),
	}
}

// MessageCreated fans out a newly sent message to both parties.
func (d *Dispatcher) MessageCreated(ctx context.Context, msg *messaging.Message) {
	d.dispatch(ctx, EventMessageCreated, msg)
}

// MessageUpdated fans out an edit to both parties so every open session
// reflects the new content without polling.
func (d *Dispatcher) MessageUpdated(ctx context.Context, msg *messaging.Message) {
	d.dispatch(ctx, EventMessageUpdated, msg)
}

// MessageDeleted fans out a deletion to both parties.
func (d *Dispatcher) MessageDeleted(ctx context.Context, msg *messaging.Message) {
	d.dispatch(ctx, EventMessageDeleted, msg)
}

// MessageRead fans out a single-message read receipt to both parties.
func (d *Dispatcher) MessageRead(ctx context.Context, msg *messaging.Message) {
	d.dispatch(ctx, EventMessageRead, msg)
}

// dispatch pushes the typed event to every connection of the receiver, then
// every connection of the sender, then refreshes each party's own
// recent-conversations snapshot. Within one event, notification pushes always
// precede the snapshot refresh so a client never sees a summary referencing a
// message state it has not been told about.
func (d *Dispatcher) dispatch(ctx context.Context, eventType EventType, msg *messaging.Message) {
	d.pushToIdentity(msg.ReceiverID, eventType, msg)
	d.pushToIdentity(msg.SenderID, eventType, msg)

	d.refreshConversations(ctx, msg.ReceiverID)
	d.refreshConversations(ctx, msg.SenderID)
}

// MessagesRead handles a mark-all-read: each distinct original sender learns
// their messages were read, then the reader and every affected sender get
// their recent-conversations snapshot refreshed. The reader receives exactly
// one refresh regardless of how many senders were affected.
func (d *Dispatcher) MessagesRead(ctx context.Context, readerID string, senderIDs []string) {
	payload := MessagesReadPayload{Reader: readerID}

	seen := make(map[string]struct{}, len(senderIDs))
	distinct := make([]string, 0, len(senderIDs))
	for _, senderID := range senderIDs {
		if _, ok := seen[senderID]; ok {
			continue
		}
		seen[senderID] = struct{}{}
		distinct = append(distinct, senderID)
	}

	for _, senderID := range distinct {
		d.pushToIdentity(senderID, EventMessageRead, payload)
	}

	d.refreshConversations(ctx, readerID)
	for _, senderID := range distinct {
		d.refreshConversations(ctx, senderID)
	}
}

// pushToIdentity resolves the identity's current connections and pushes the
// event to each. An offline identity yields zero pushes; delivery is simply
// skipped, never queued.
func (d *Dispatcher) pushToIdentity(identity string, eventType EventType, payload any) {
	for _, connID := range d.registry.Connections(identity) {
		d.pusher.Push(connID, eventType, payload)
	}
}

// refreshConversations recomputes the identity's recent-conversations snapshot
// and pushes it only to that identity's own connections. A snapshot fetch
// failure skips just this refresh; earlier event pushes already went out.
func (d *Dispatcher) refreshConversations(ctx context.Context, identity string) {
	connIDs := d.registry.Connections(identity)
	if len(connIDs) == 0 {
		return
	}

	summaries, err := d.conversations.RecentConversations(ctx, identity)
	if err != nil {
		d.logger.Error().Err(err).
			Str("identity", identity).
			Msg("Failed to recompute recent conversations for push refresh.")
		return
	}

	payload := ConversationsPayload{Conversations: summaries}
	for _, connID := range connIDs {
		d.pusher.Push(connID, EventConversationsUpdated, payload)
	}
}
