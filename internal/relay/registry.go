package relay

import (
	"sort"
	"sync"
)

// Registry is the single source of truth for who is online: a mutex-guarded
// bidirectional mapping between user identity and connection sink. It owns
// the mapping only; socket lifecycle belongs to the transport layer.
//
// Invariant: no two identities map to the same sink. Register enforces this
// by evicting any identity currently holding the sink being registered.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]Sink)}
}

// Register maps identity to sink, replacing any prior mapping for the
// identity (last register wins; the prior socket is not closed here, its
// own disconnect will clean it up). Returns true if the set of online
// identities changed.
func (r *Registry) Register(identity string, sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Evict any identity already holding this sink so a sink is never
	// reachable under two identities. Eviction shrinks the online set,
	// which is a membership change in its own right.
	evicted := false
	for id, s := range r.sinks {
		if s == sink && id != identity {
			delete(r.sinks, id)
			evicted = true
		}
	}

	_, existed := r.sinks[identity]
	r.sinks[identity] = sink
	return evicted || !existed
}

// Unregister removes the mapping for identity. Removing an absent identity
// is a no-op, not an error. Returns true if an entry was removed.
func (r *Registry) Unregister(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.sinks[identity]
	delete(r.sinks, identity)
	return existed
}

// UnregisterSink removes whatever mapping holds sink. Used at disconnect,
// when the transport no longer knows the identity reliably. At most one
// entry can match. Returns true if an entry was removed.
func (r *Registry) UnregisterSink(sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sinks {
		if s == sink {
			delete(r.sinks, id)
			return true
		}
	}
	return false
}

// Lookup returns the sink for identity, if online.
func (r *Registry) Lookup(identity string) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.sinks[identity]
	return sink, ok
}

// Identities returns a sorted snapshot of the online identities.
// Sorting keeps presence payloads deterministic for clients and tests.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sinks))
	for id := range r.sinks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of online identities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sinks)
}

// snapshotSinks returns the current sinks for broadcasting.
func (r *Registry) snapshotSinks() []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]Sink, 0, len(r.sinks))
	for _, s := range r.sinks {
		sinks = append(sinks, s)
	}
	return sinks
}
