package models

// Event types arriving from clients over the WebSocket connection.
const (
	EventJoin = "join" // announce identity for this connection
	EventSend = "send" // send a direct message
)

// Event types pushed to clients.
const (
	EventPresence = "presence" // current online user set
	EventMessage  = "message"  // incoming message from another user
	EventSent     = "sent"     // echo of the caller's own message, with server id/ts
	EventError    = "error"    // send rejected
)

// ClientEvent is the envelope for inbound WebSocket frames.
type ClientEvent struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id,omitempty"` // join
	To      string `json:"to,omitempty"`      // send
	Content string `json:"content,omitempty"` // send
}

// ServerEvent is the envelope for outbound WebSocket frames.
type ServerEvent struct {
	Type    string   `json:"type"`
	Users   []string `json:"users,omitempty"`   // presence
	Message *Message `json:"message,omitempty"` // message, sent
	Code    string   `json:"code,omitempty"`    // error
	Error   string   `json:"error,omitempty"`   // error
}
