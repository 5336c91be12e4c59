package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/eldtechnologies/wisp/internal/models"
)

// PostgresStore persists messages in PostgreSQL via a connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		sender TEXT NOT NULL,
		receiver TEXT NOT NULL,
		content TEXT NOT NULL,
		ts BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender, receiver, seq);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Append stores a message, assigning its id and timestamp.
func (s *PostgresStore) Append(ctx context.Context, sender, receiver, content string) (*models.Message, error) {
	msg := &models.Message{
		ID:        ulid.Make().String(),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, sender, receiver, content, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.Sender, msg.Receiver, msg.Content, msg.Timestamp)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// History retrieves all messages between userA and userB, oldest first,
// regardless of direction.
func (s *PostgresStore) History(ctx context.Context, userA, userB string) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender, receiver, content, ts
		FROM messages
		WHERE (sender = $1 AND receiver = $2) OR (sender = $2 AND receiver = $1)
		ORDER BY seq ASC
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.Sender,
			&msg.Receiver,
			&msg.Content,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
