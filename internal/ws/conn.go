// Package ws is the WebSocket transport: it upgrades HTTP connections,
// runs the per-connection read/write pumps, and adapts each socket into a
// relay sink.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wisp/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxFrameSize = 4096
	sendBuffer   = 64
)

// Conn wraps one WebSocket connection. It implements relay.Sink: Push
// enqueues onto a buffered channel drained by the write pump, so callers
// never block on a slow client.
type Conn struct {
	id     string
	sock   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func newConn(sock *websocket.Conn, logger zerolog.Logger) *Conn {
	id := uuid.NewString()
	sock.SetReadLimit(maxFrameSize)

	return &Conn{
		id:     id,
		sock:   sock,
		send:   make(chan []byte, sendBuffer),
		logger: logger.With().Str("conn", id).Logger(),
	}
}

// ID returns the connection's id, used only for logging.
func (c *Conn) ID() string {
	return c.id
}

// Push enqueues an event for delivery. It reports false when the
// connection is closed or its buffer is full; the caller treats that as a
// delivery miss.
func (c *Conn) Push(event models.ServerEvent) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Msg("marshal outbound event")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// shutdown marks the connection closed and stops the write pump. Safe to
// call more than once.
func (c *Conn) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.send)
}

// readPump decodes inbound frames and hands them to handle. It exits on
// any read error; the caller runs disconnect cleanup afterwards.
func (c *Conn) readPump(handle func(models.ClientEvent)) {
	defer c.sock.Close()

	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		var event models.ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.logger.Debug().Err(err).Msg("malformed frame")
			c.Push(models.ServerEvent{
				Type:  models.EventError,
				Code:  "bad_frame",
				Error: "malformed event",
			})
			continue
		}

		handle(event)
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sock.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.sock.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
