package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientInboundTypingFrameIsRelayed(t *testing.T) {
	hub := NewHub()

	sender := NewClient(hub, nil, "sender")
	hub.Register(sender)
	receiver := NewClient(hub, nil, "receiver")
	hub.Register(receiver)
	drainEvents(t, receiver)

	sender.processInboundFrame([]byte(`{"type":"typing.started","payload":{"to":"receiver"}}`))

	events := drainEvents(t, receiver)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypingStarted, events[0].Type)
}

func TestClientInvalidJSONGetsErrorFrame(t *testing.T) {
	hub := NewHub()

	c := NewClient(hub, nil, "alice")
	hub.Register(c)
	drainEvents(t, c)

	c.processInboundFrame([]byte(`{not json`))

	events := drainEvents(t, c)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
}

func TestClientUnsupportedFrameTypeGetsErrorFrame(t *testing.T) {
	hub := NewHub()

	c := NewClient(hub, nil, "alice")
	hub.Register(c)
	drainEvents(t, c)

	// Mutations go through the REST surface; the socket only accepts typing.
	c.processInboundFrame([]byte(`{"type":"message.created","payload":{}}`))

	events := drainEvents(t, c)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
}

func TestClientTypingFrameWithInvalidReceiverIsDropped(t *testing.T) {
	hub := NewHub()

	c := NewClient(hub, nil, "alice")
	hub.Register(c)
	drainEvents(t, c)

	// Typing to yourself or to nobody is silently discarded.
	c.processInboundFrame([]byte(`{"type":"typing.started","payload":{"to":"alice"}}`))
	c.processInboundFrame([]byte(`{"type":"typing.started","payload":{"to":""}}`))

	assert.Empty(t, drainEvents(t, c))
}
