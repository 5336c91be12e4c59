package models

// Message is one persisted direct message between two users.
// Messages are immutable once stored; the server assigns ID and Timestamp
// at append time and clients treat them as authoritative.
type Message struct {
	ID        string `json:"id"`       // ULID
	Sender    string `json:"sender"`   // user identity, issued by the auth layer
	Receiver  string `json:"receiver"` // user identity
	Content   string `json:"content"`
	Timestamp int64  `json:"ts"` // Unix ms
}
