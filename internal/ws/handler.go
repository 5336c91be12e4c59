package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wisp/internal/models"
	"github.com/eldtechnologies/wisp/internal/relay"
)

const sendTimeout = 10 * time.Second

// Handler upgrades HTTP requests to WebSocket connections and binds each
// one to a relay session.
type Handler struct {
	coord      *relay.Coordinator
	dispatcher *relay.Dispatcher
	logger     zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewHandler creates the WebSocket endpoint handler.
func NewHandler(coord *relay.Coordinator, dispatcher *relay.Dispatcher, logger zerolog.Logger) *Handler {
	return &Handler{
		coord:      coord,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identity is asserted by the authenticated join event, not
			// the Origin header; browsers of any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws. The client may announce its identity with the
// user_id query parameter or with a join frame after connecting; a join
// frame wins over the query parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	conn := newConn(sock, h.logger)
	session := relay.NewSession(h.coord, h.dispatcher, conn, conn.logger)

	h.logger.Info().Str("conn", conn.ID()).Str("remote", r.RemoteAddr).Msg("client connected")

	go conn.writePump()

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		if err := session.HandleJoin(userID); err != nil {
			conn.Push(errorEvent(err))
		}
	}

	conn.readPump(func(event models.ClientEvent) {
		h.dispatch(session, conn, event)
	})

	// Read pump exited: transport-level close or error from any state.
	session.Close()
	conn.shutdown()

	h.logger.Info().Str("conn", conn.ID()).Msg("client disconnected")
}

// dispatch routes one inbound event through the session state machine and
// reports failures back on the originating connection only.
func (h *Handler) dispatch(session *relay.Session, conn *Conn, event models.ClientEvent) {
	switch event.Type {
	case models.EventJoin:
		if err := session.HandleJoin(event.UserID); err != nil {
			conn.Push(errorEvent(err))
		}

	case models.EventSend:
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := session.HandleSend(ctx, event.To, event.Content); err != nil {
			conn.Push(errorEvent(err))
		}

	default:
		conn.Push(models.ServerEvent{
			Type:  models.EventError,
			Code:  "unknown_event",
			Error: "unknown event type",
		})
	}
}

// errorEvent maps relay errors onto the wire taxonomy.
func errorEvent(err error) models.ServerEvent {
	code := "internal"
	switch {
	case errors.Is(err, relay.ErrInvalidMessage):
		code = "invalid_message"
	case errors.Is(err, relay.ErrNotJoined):
		code = "not_joined"
	case errors.Is(err, relay.ErrPersistence):
		code = "persistence"
	}

	return models.ServerEvent{
		Type:  models.EventError,
		Code:  code,
		Error: err.Error(),
	}
}
