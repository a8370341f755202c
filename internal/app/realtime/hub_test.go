package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drainEvents decodes everything currently queued for the client without
// blocking. The hub delivers synchronously, so after a hub call returns the
// queue already holds every event that will arrive.
func drainEvents(t *testing.T, c *Client) []Event {
	t.Helper()

	var events []Event
	for {
		select {
		case eventBytes, ok := <-c.send:
			if !ok {
				return events
			}
			var event Event
			require.NoError(t, json.Unmarshal(eventBytes, &event))
			events = append(events, event)
		default:
			return events
		}
	}
}

func presenceOnline(t *testing.T, event Event) []string {
	t.Helper()

	require.Equal(t, EventPresence, event.Type)

	payloadBytes, err := json.Marshal(event.Payload)
	require.NoError(t, err)

	var payload PresencePayload
	require.NoError(t, json.Unmarshal(payloadBytes, &payload))
	return payload.Online
}

func TestHubRegisterBroadcastsFullOnlineSetToEveryone(t *testing.T) {
	hub := NewHub()

	alice := NewClient(hub, nil, "alice")
	hub.Register(alice)

	bob := NewClient(hub, nil, "bob")
	hub.Register(bob)

	// Alice got one broadcast per connect; each carried the full set current
	// at that moment, never a diff.
	aliceEvents := drainEvents(t, alice)
	require.Len(t, aliceEvents, 2)
	assert.ElementsMatch(t, []string{"alice"}, presenceOnline(t, aliceEvents[0]))
	assert.ElementsMatch(t, []string{"alice", "bob"}, presenceOnline(t, aliceEvents[1]))

	bobEvents := drainEvents(t, bob)
	require.Len(t, bobEvents, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, presenceOnline(t, bobEvents[0]))
}

func TestHubSecondTabDoesNotChangeTheOnlineSet(t *testing.T) {
	hub := NewHub()

	tab1 := NewClient(hub, nil, "alice")
	hub.Register(tab1)

	tab2 := NewClient(hub, nil, "alice")
	hub.Register(tab2)

	events := drainEvents(t, tab1)
	require.Len(t, events, 2)
	// The rebroadcast still happens, but the set itself is unchanged.
	assert.ElementsMatch(t, []string{"alice"}, presenceOnline(t, events[1]))

	// Closing one tab keeps alice online.
	hub.Unregister(tab2)
	events = drainEvents(t, tab1)
	require.Len(t, events, 1)
	assert.ElementsMatch(t, []string{"alice"}, presenceOnline(t, events[0]))

	hub.Unregister(tab1)
	assert.Empty(t, hub.Registry().OnlineIdentities())
}

func TestHubUnregisterIsStaleSafe(t *testing.T) {
	hub := NewHub()

	alice := NewClient(hub, nil, "alice")
	hub.Register(alice)

	bob := NewClient(hub, nil, "bob")
	hub.Register(bob)
	drainEvents(t, bob)

	hub.Unregister(alice)
	require.Len(t, drainEvents(t, bob), 1)

	// A duplicate disconnect must not trigger another broadcast or touch
	// anyone else's state.
	hub.Unregister(alice)
	assert.Empty(t, drainEvents(t, bob))
	assert.ElementsMatch(t, []string{"bob"}, hub.Registry().OnlineIdentities())
}

func TestHubTypingReachesEveryReceiverConnectionOnly(t *testing.T) {
	hub := NewHub()

	sender := NewClient(hub, nil, "sender")
	hub.Register(sender)

	tab1 := NewClient(hub, nil, "receiver")
	hub.Register(tab1)
	tab2 := NewClient(hub, nil, "receiver")
	hub.Register(tab2)

	bystander := NewClient(hub, nil, "bystander")
	hub.Register(bystander)

	drainEvents(t, sender)
	drainEvents(t, tab1)
	drainEvents(t, tab2)
	drainEvents(t, bystander)

	hub.NotifyTyping("sender", "receiver")

	for _, tab := range []*Client{tab1, tab2} {
		events := drainEvents(t, tab)
		require.Len(t, events, 1)
		assert.Equal(t, EventTypingStarted, events[0].Type)

		payloadBytes, err := json.Marshal(events[0].Payload)
		require.NoError(t, err)
		var payload TypingPayload
		require.NoError(t, json.Unmarshal(payloadBytes, &payload))
		assert.Equal(t, "sender", payload.From)
	}

	// Neither the sender nor an unrelated identity hears the signal.
	assert.Empty(t, drainEvents(t, sender))
	assert.Empty(t, drainEvents(t, bystander))

	hub.NotifyStoppedTyping("sender", "receiver")
	events := drainEvents(t, tab1)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypingStopped, events[0].Type)
}

func TestHubTypingToOfflineIdentityIsANoOp(t *testing.T) {
	hub := NewHub()

	sender := NewClient(hub, nil, "sender")
	hub.Register(sender)
	drainEvents(t, sender)

	hub.NotifyTyping("sender", "nobody-home")

	assert.Empty(t, drainEvents(t, sender))
}

func TestHubPushRoutesToOneConnection(t *testing.T) {
	hub := NewHub()

	tab1 := NewClient(hub, nil, "alice")
	hub.Register(tab1)
	tab2 := NewClient(hub, nil, "alice")
	hub.Register(tab2)

	drainEvents(t, tab1)
	drainEvents(t, tab2)

	hub.Push(tab1.ConnID(), EventMessageCreated, map[string]string{"id": "m1"})

	events := drainEvents(t, tab1)
	require.Len(t, events, 1)
	assert.Equal(t, EventMessageCreated, events[0].Type)
	assert.Empty(t, drainEvents(t, tab2))
}

func TestHubPushToUnknownConnectionIsDropped(t *testing.T) {
	hub := NewHub()

	assert.NotPanics(t, func() {
		hub.Push("no-such-conn", EventMessageCreated, nil)
	})
}

func TestHubEnqueueAfterCloseDoesNotPanic(t *testing.T) {
	hub := NewHub()

	c := NewClient(hub, nil, "alice")
	hub.Register(c)

	c.CloseSend()
	c.CloseSend()

	assert.NotPanics(t, func() {
		c.Enqueue(NewEvent(EventPresence, PresencePayload{Online: []string{"alice"}}))
	})
}

func TestHubShutdownClosesEverySendQueue(t *testing.T) {
	hub := NewHub()

	alice := NewClient(hub, nil, "alice")
	hub.Register(alice)

	hub.Shutdown()

	drainEvents(t, alice)
	_, ok := <-alice.send
	assert.False(t, ok, "send queue should be closed after shutdown")
}
