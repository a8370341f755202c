/*
Package realtime contains the core logic for live message delivery.

This file defines the Client struct, representing one live websocket session. It manages
the session lifecycle, the read and write pumps, and relaying inbound typing signals to
the Hub.
*/
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"deskhub/internal/pkg/errs"
	"deskhub/internal/pkg/logx"
	"deskhub/internal/pkg/randx"
)

const (
	// timeout duration for writing to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 4096

	// capacity of the per-connection outbound queue. A full queue means the
	// event is dropped for that connection; delivery is at-most-once.
	sendQueueSize = 256
)

// Client represents one authenticated websocket session. A user with several
// open tabs owns several Clients under the same identity.
type Client struct {
	// the hub this client is registered with.
	hub *Hub

	// underlying websocket connection object.
	conn *websocket.Conn

	// identity is the stable logical user id this session authenticated as.
	identity string

	// connID uniquely identifies this session among all live connections.
	connID string

	// a buffered channel used to queue events waiting to be sent to the client.
	send chan []byte

	// closeOnce guards the send channel against double close on racing
	// disconnect paths.
	closeOnce sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an already-upgraded, already-authenticated
// websocket connection and assigns it a fresh connection id.
func NewClient(hub *Hub, wsConn *websocket.Conn, identity string) *Client {
	connID := randx.ConnectionID()

	clientLogger := logx.Logger().With().
		Str("identity", identity).
		Str("conn_id", connID).
		Logger()

	return &Client{
		hub:      hub,
		conn:     wsConn,
		identity: identity,
		connID:   connID,
		send:     make(chan []byte, sendQueueSize),
		logger:   clientLogger,
	}
}

// Identity returns the logical user id this session belongs to.
func (c *Client) Identity() string {
	return c.identity
}

// ConnID returns the session's unique connection id.
func (c *Client) ConnID() string {
	return c.connID
}

// ReadPump reads frames from the websocket connection until it closes. It
// handles heartbeats (Pong), relays typing signals to the Hub, and performs
// hub unregistration on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect unregisters the client from the hub and closes the
// socket when ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Unregister(c)
	c.CloseSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame handles raw frames received from the client. Only typing
// signals are accepted over the socket; everything else is rejected.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		c.Enqueue(NewEvent(EventError, ErrorPayload{
			Code:    errs.ErrInvalidJSONFormat,
			Message: "Invalid frame.",
		}))
		return
	}

	switch frame.Type {
	case EventTypingStarted, EventTypingStopped:
		c.handleTyping(frame.Type, frame.Payload)

	default:
		c.logger.Warn().Str("frame_type", string(frame.Type)).Msg("Client sent unsupported frame type")
		c.Enqueue(NewEvent(EventError, ErrorPayload{
			Code:    errs.ErrInvalidParams,
			Message: "Unsupported frame type.",
		}))
	}
}

// handleTyping validates a typing frame and relays it through the hub.
func (c *Client) handleTyping(eventType EventType, payloadBytes json.RawMessage) {
	var payload typingFrame
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid typing payload")
		return
	}

	if payload.To == "" || payload.To == c.identity {
		c.logger.Warn().Str("to", payload.To).Msg("Client sent typing frame with invalid receiver")
		return
	}

	if eventType == EventTypingStarted {
		c.hub.NotifyTyping(c.identity, payload.To)
	} else {
		c.hub.NotifyStoppedTyping(c.identity, payload.To)
	}
}

// Enqueue marshals the event and queues it for delivery to this connection.
// The call never blocks: if the send queue is full or already closed, the
// event is dropped and the connection's own disconnect path prunes it later.
func (c *Client) Enqueue(event Event) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Str("event", string(event.Type)).Msg("Error marshaling event for client")
		return
	}

	defer func() {
		if recover() != nil {
			c.logger.Debug().Str("event", string(event.Type)).Msg("Enqueue on closed connection, dropping event.")
		}
	}()

	select {
	case c.send <- eventBytes:
	default:
		c.logger.Warn().
			Int("queue_len", len(c.send)).
			Str("event", string(event.Type)).
			Msg("Client send queue full, dropping event")
	}
}

// CloseSend closes the outbound queue exactly once, signalling WritePump to
// send a close frame and exit.
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// WritePump writes queued events from the send channel to the websocket
// connection and maintains the ping heartbeat.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case eventBytes, ok := <-c.send:
			if !c.writeQueuedEvent(eventBytes, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedEvent writes one queued event to the socket. Returns true if the
// WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedEvent(eventBytes []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, eventBytes); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing event")
		return false
	}

	return true
}

// writePingMessage sends a periodic websocket Ping to maintain the heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
