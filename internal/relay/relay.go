// Package relay implements the presence-and-relay engine: it tracks which
// users hold a live connection, broadcasts presence changes, and routes
// point-to-point messages, persisting every message before any delivery.
package relay

import (
	"errors"

	"github.com/eldtechnologies/wisp/internal/models"
)

// Sink is one live client connection able to accept outbound events.
// Push must not block: implementations enqueue and report whether the
// event was accepted. A dropped push is a delivery miss, never an error;
// offline recipients recover messages through the history read path.
type Sink interface {
	Push(event models.ServerEvent) bool
}

var (
	// ErrInvalidMessage rejects a send with an empty identity or
	// whitespace-only content before any side effect.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrPersistence wraps a message store failure. The send fails
	// atomically: nothing was delivered to either party.
	ErrPersistence = errors.New("message store unavailable")

	// ErrNotJoined rejects a send arriving on a connection that has not
	// announced its identity yet.
	ErrNotJoined = errors.New("connection has not joined")
)
