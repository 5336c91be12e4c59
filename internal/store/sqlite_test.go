package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)

	msg, err := s.Append(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" {
		t.Fatal("expected assigned id")
	}
	if msg.Timestamp == 0 {
		t.Fatal("expected assigned timestamp")
	}
	if msg.Sender != "alice" || msg.Receiver != "bob" || msg.Content != "hello" {
		t.Fatalf("unexpected record %+v", msg)
	}
}

func TestHistoryUnorderedPair(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contents := []string{"one", "two", "three"}
	for i, c := range contents {
		// Alternate direction; the conversation is the same either way.
		sender, receiver := "alice", "bob"
		if i%2 == 1 {
			sender, receiver = "bob", "alice"
		}
		if _, err := s.Append(ctx, sender, receiver, c); err != nil {
			t.Fatal(err)
		}
	}

	// Unrelated conversation must not leak in.
	if _, err := s.Append(ctx, "alice", "carol", "psst"); err != nil {
		t.Fatal(err)
	}

	forward, err := s.History(ctx, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	reverse, err := s.History(ctx, "bob", "alice")
	if err != nil {
		t.Fatal(err)
	}

	if len(forward) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(forward))
	}
	for i := range forward {
		if forward[i].Content != contents[i] {
			t.Fatalf("position %d: expected %q, got %q", i, contents[i], forward[i].Content)
		}
		if forward[i].ID != reverse[i].ID {
			t.Fatal("history must not depend on argument order")
		}
	}
}

func TestHistoryPreservesCreationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Burst of appends lands within the same millisecond; order must
	// still match creation order.
	var ids []string
	for i := 0; i < 50; i++ {
		msg, err := s.Append(ctx, "alice", "bob", "m")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, msg.ID)
	}

	history, err := s.History(ctx, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != len(ids) {
		t.Fatalf("expected %d messages, got %d", len(ids), len(history))
	}
	for i := range history {
		if history[i].ID != ids[i] {
			t.Fatalf("position %d out of order", i)
		}
	}
}

func TestHistoryEmptyConversation(t *testing.T) {
	s := newTestStore(t)

	history, err := s.History(context.Background(), "nobody", "anybody")
	if err != nil {
		t.Fatal(err)
	}
	if history == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(history) != 0 {
		t.Fatalf("expected no messages, got %d", len(history))
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := s.Append(ctx, "alice", "bob", "survives restart")
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	history, err := reopened.History(ctx, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ID != msg.ID {
		t.Fatalf("expected the persisted message after reopen, got %v", history)
	}
}
