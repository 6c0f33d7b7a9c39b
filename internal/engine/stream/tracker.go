package stream

import "sync"

// Tracker records opened streams for system-side bookkeeping (volume and
// playback attribution). Registration happens once per successful build.
type Tracker interface {
	Register(s Stream)
}

// Registry is the in-process Tracker.
type Registry struct {
	mu      sync.Mutex
	streams map[string]Stream
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{streams: make(map[string]Stream)}
}

// Register records the stream under its id. Re-registration overwrites,
// which keeps the operation idempotent.
func (r *Registry) Register(s Stream) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[s.ID()] = s
}

// Deregister forgets a stream; used when the embedding layer closes it.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, id)
}

// Len reports how many streams are currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}
