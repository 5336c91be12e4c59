package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wisp/internal/models"
)

func newTestDispatcher(failing bool) (*Dispatcher, *fakeStore, *Registry) {
	st := &fakeStore{failing: failing}
	registry := NewRegistry()
	return NewDispatcher(st, registry, zerolog.Nop()), st, registry
}

func TestSendValidation(t *testing.T) {
	d, st, registry := newTestDispatcher(false)
	h1 := &fakeSink{}
	registry.Register("alice", h1)

	cases := []struct {
		name     string
		sender   string
		receiver string
		content  string
	}{
		{"empty sender", "", "bob", "hi"},
		{"empty receiver", "alice", "", "hi"},
		{"empty content", "alice", "bob", ""},
		{"whitespace content", "alice", "bob", "   \t\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Send(context.Background(), tc.sender, tc.receiver, tc.content)
			if !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("expected ErrInvalidMessage, got %v", err)
			}
		})
	}

	if st.count() != 0 {
		t.Fatalf("invalid sends must not persist anything, store has %d", st.count())
	}
	if len(h1.events) != 0 {
		t.Fatalf("invalid sends must not push anything, sink got %d events", len(h1.events))
	}
}

func TestSendPersistFailureDeliversNothing(t *testing.T) {
	d, _, registry := newTestDispatcher(true)
	h1 := &fakeSink{}
	h2 := &fakeSink{}
	registry.Register("alice", h1)
	registry.Register("bob", h2)

	_, err := d.Send(context.Background(), "alice", "bob", "hi")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	// The store's own error stays reachable through the wrap chain.
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected the store cause in the chain, got %v", err)
	}

	if len(h1.events) != 0 || len(h2.events) != 0 {
		t.Fatal("failed persist must not deliver to either party")
	}
}

func TestSendBothOnline(t *testing.T) {
	d, st, registry := newTestDispatcher(false)
	h1 := &fakeSink{}
	h2 := &fakeSink{}
	registry.Register("alice", h1)
	registry.Register("bob", h2)

	msg, err := d.Send(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" {
		t.Fatal("expected server-assigned id")
	}

	incoming := h2.eventsOfType(models.EventMessage)
	if len(incoming) != 1 {
		t.Fatalf("expected exactly 1 incoming event, got %d", len(incoming))
	}
	echoes := h1.eventsOfType(models.EventSent)
	if len(echoes) != 1 {
		t.Fatalf("expected exactly 1 echo event, got %d", len(echoes))
	}

	if incoming[0].Message.ID != echoes[0].Message.ID {
		t.Fatal("incoming and echo must carry the same persisted id")
	}
	if incoming[0].Message.Timestamp != echoes[0].Message.Timestamp {
		t.Fatal("incoming and echo must carry the same timestamp")
	}

	if st.count() != 1 {
		t.Fatalf("expected 1 persisted message, got %d", st.count())
	}
}

func TestSendOfflineRecipient(t *testing.T) {
	d, st, registry := newTestDispatcher(false)
	h1 := &fakeSink{}
	registry.Register("alice", h1)

	msg, err := d.Send(context.Background(), "alice", "bob", "hi")
	if err != nil {
		t.Fatal(err)
	}

	// Echo still reaches the sender; the message waits in history for bob.
	if len(h1.eventsOfType(models.EventSent)) != 1 {
		t.Fatal("sender should receive the echo")
	}

	history, err := st.History(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ID != msg.ID {
		t.Fatalf("expected the message in history, got %v", history)
	}
}

func TestSendDroppedPushIsNotAnError(t *testing.T) {
	d, st, registry := newTestDispatcher(false)
	dead := &fakeSink{full: true}
	registry.Register("bob", dead)

	_, err := d.Send(context.Background(), "alice", "bob", "hi")
	if err != nil {
		t.Fatalf("dropped push must not fail the send: %v", err)
	}
	if st.count() != 1 {
		t.Fatal("message must still be persisted")
	}
}

func TestConversationOrderPreserved(t *testing.T) {
	d, st, _ := newTestDispatcher(false)

	contents := []string{"one", "two", "three", "four"}
	for _, c := range contents {
		if _, err := d.Send(context.Background(), "alice", "bob", c); err != nil {
			t.Fatal(err)
		}
	}

	// Direction must not matter for the pair key.
	if _, err := d.Send(context.Background(), "bob", "alice", "five"); err != nil {
		t.Fatal(err)
	}

	history, err := st.History(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatal(err)
	}

	want := append(contents, "five")
	if len(history) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(history))
	}
	for i, m := range history {
		if m.Content != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], m.Content)
		}
	}
}
