package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wisp/internal/metrics"
	"github.com/eldtechnologies/wisp/internal/models"
	"github.com/eldtechnologies/wisp/internal/store"
)

// Dispatcher routes a send request: persist first, then deliver to the
// recipient and echo to the sender if they are online. Persistence before
// delivery guarantees every delivered message is recoverable from history.
type Dispatcher struct {
	store    store.MessageStore
	registry *Registry
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given store and registry.
func NewDispatcher(messages store.MessageStore, registry *Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    messages,
		registry: registry,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Send validates, persists, and relays one direct message. It returns the
// stored message with its server-assigned id and timestamp.
//
// ErrInvalidMessage: empty identity or whitespace-only content, nothing
// persisted. ErrPersistence: store write failed, nothing delivered. An
// offline recipient is not an error; the message waits in history.
func (d *Dispatcher) Send(ctx context.Context, sender, receiver, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if sender == "" || receiver == "" || content == "" {
		return nil, ErrInvalidMessage
	}

	start := time.Now()
	msg, err := d.store.Append(ctx, sender, receiver, content)
	metrics.StoreLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	// The registry is consulted only after the write lands; both lookups
	// are snapshot reads, no lock held across pushes.
	delivery := "offline"
	if sink, ok := d.registry.Lookup(receiver); ok {
		delivery = "online"
		if !sink.Push(models.ServerEvent{Type: models.EventMessage, Message: msg}) {
			metrics.DroppedPushes.WithLabelValues("message").Inc()
			d.logger.Debug().
				Str("id", msg.ID).
				Str("receiver", receiver).
				Msg("recipient push dropped")
		}
	}

	if sink, ok := d.registry.Lookup(sender); ok {
		if !sink.Push(models.ServerEvent{Type: models.EventSent, Message: msg}) {
			metrics.DroppedPushes.WithLabelValues("echo").Inc()
		}
	}

	metrics.MessagesRelayed.WithLabelValues(delivery).Inc()

	d.logger.Debug().
		Str("id", msg.ID).
		Str("sender", sender).
		Str("receiver", receiver).
		Str("delivery", delivery).
		Msg("message relayed")

	return msg, nil
}
