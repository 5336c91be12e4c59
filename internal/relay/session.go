package relay

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Session is the per-connection state machine: connected (unidentified)
// until a join announcement arrives, identified afterwards, closed on
// disconnect. The transport feeds it inbound events; it drives the
// coordinator and dispatcher.
type Session struct {
	coord      *Coordinator
	dispatcher *Dispatcher
	sink       Sink
	logger     zerolog.Logger

	mu       sync.Mutex
	identity string
	closed   bool
}

// NewSession creates a session for one connection.
func NewSession(coord *Coordinator, dispatcher *Dispatcher, sink Sink, logger zerolog.Logger) *Session {
	return &Session{
		coord:      coord,
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
	}
}

// HandleJoin transitions the session to identified and registers it.
// A second join re-registers under the new identity (last register wins).
func (s *Session) HandleJoin(identity string) error {
	if identity == "" {
		return ErrInvalidMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNotJoined
	}
	s.identity = identity
	s.mu.Unlock()

	s.coord.Join(identity, s.sink)
	return nil
}

// HandleSend relays a message from this session's identity. Sends arriving
// before a join are rejected without side effects.
func (s *Session) HandleSend(ctx context.Context, to, content string) error {
	s.mu.Lock()
	sender := s.identity
	s.mu.Unlock()

	if sender == "" {
		return ErrNotJoined
	}

	_, err := s.dispatcher.Send(ctx, sender, to, content)
	return err
}

// Identity returns the identity announced on this session, if any.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Close handles transport-level disconnect from any state. It is terminal
// and idempotent; the coordinator only broadcasts if the session had
// actually joined.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.coord.Leave(s.sink)
}
