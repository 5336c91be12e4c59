package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eldtechnologies/wisp/internal/models"
)

// fakeSink records every pushed event. Setting full simulates a dead or
// saturated connection whose pushes are dropped.
type fakeSink struct {
	mu     sync.Mutex
	events []models.ServerEvent
	full   bool
}

func (s *fakeSink) Push(event models.ServerEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.full {
		return false
	}
	s.events = append(s.events, event)
	return true
}

func (s *fakeSink) eventsOfType(eventType string) []models.ServerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ServerEvent
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (s *fakeSink) lastPresence() ([]string, bool) {
	presences := s.eventsOfType(models.EventPresence)
	if len(presences) == 0 {
		return nil, false
	}
	return presences[len(presences)-1].Users, true
}

// fakeStore is an in-memory MessageStore. Setting failing makes Append
// return an error without recording anything.
type fakeStore struct {
	mu       sync.Mutex
	messages []models.Message
	failing  bool
	seq      int
}

var errStoreDown = errors.New("store down")

func (s *fakeStore) Append(_ context.Context, sender, receiver, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return nil, errStoreDown
	}

	s.seq++
	msg := models.Message{
		ID:        fmt.Sprintf("msg-%04d", s.seq),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: int64(s.seq),
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *fakeStore) History(_ context.Context, userA, userB string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, 0)
	for _, m := range s.messages {
		if (m.Sender == userA && m.Receiver == userB) || (m.Sender == userB && m.Receiver == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }
func (s *fakeStore) Close()                     {}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}
