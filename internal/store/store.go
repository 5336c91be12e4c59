package store

import (
	"context"

	"github.com/eldtechnologies/wisp/internal/models"
)

// MessageStore is the durable record of direct messages.
// Both PostgresStore and SQLiteStore implement this interface.
//
// Append assigns the message id and timestamp and must be atomic per call.
// History returns every message of the unordered pair (userA, userB) in
// creation order. Neither method retries internally; errors surface to the
// caller unchanged.
type MessageStore interface {
	Close()
	Ping(ctx context.Context) error

	Append(ctx context.Context, sender, receiver, content string) (*models.Message, error)
	History(ctx context.Context, userA, userB string) ([]models.Message, error)
}
