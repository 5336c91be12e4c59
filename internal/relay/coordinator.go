package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wisp/internal/metrics"
	"github.com/eldtechnologies/wisp/internal/models"
)

// Coordinator drives connection lifecycle against the registry and owns
// presence broadcasting. Its mutex serializes every mutate-then-broadcast
// sequence, so clients observe presence updates in mutation order. Pushes
// are non-blocking enqueues, so no I/O happens under the lock.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	logger   zerolog.Logger
}

// NewCoordinator creates a coordinator over the given registry.
func NewCoordinator(registry *Registry, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		registry: registry,
		logger:   logger.With().Str("component", "coordinator").Logger(),
	}
}

// Join registers identity on sink and broadcasts the updated presence set.
// A repeat join for the same identity overwrites the mapping (last register
// wins) and only broadcasts when membership actually changed.
func (c *Coordinator) Join(identity string, sink Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := c.registry.Register(identity, sink)
	metrics.ConnectionsActive.Set(float64(c.registry.Len()))
	metrics.JoinsTotal.Inc()

	c.logger.Info().
		Str("user", identity).
		Int("online", c.registry.Len()).
		Msg("user joined")

	if changed {
		c.broadcastPresence()
	} else {
		// Re-registration swapped the sink without changing membership;
		// the new sink still needs the current set.
		sink.Push(models.ServerEvent{Type: models.EventPresence, Users: c.registry.Identities()})
	}
}

// Leave removes whatever identity holds sink and broadcasts if an entry was
// actually removed. Sinks that never joined produce no broadcast.
func (c *Coordinator) Leave(sink Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.registry.UnregisterSink(sink)
	if !removed {
		return
	}

	metrics.ConnectionsActive.Set(float64(c.registry.Len()))

	c.logger.Info().
		Int("online", c.registry.Len()).
		Msg("user left")

	c.broadcastPresence()
}

// Online returns the current presence set.
func (c *Coordinator) Online() []string {
	return c.registry.Identities()
}

// broadcastPresence pushes the post-mutation identity set to every sink.
// A full or dead sink never aborts delivery to the others.
func (c *Coordinator) broadcastPresence() {
	event := models.ServerEvent{
		Type:  models.EventPresence,
		Users: c.registry.Identities(),
	}

	for _, sink := range c.registry.snapshotSinks() {
		if !sink.Push(event) {
			metrics.DroppedPushes.WithLabelValues("presence").Inc()
		}
	}

	metrics.PresenceBroadcasts.Inc()
}
