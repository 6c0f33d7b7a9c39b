package telemetry

import (
	"context"
	"sync"
)

// MemorySink collects exported events for test assertions.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Export appends the event.
func (s *MemorySink) Export(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything exported so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Named filters events by name.
func (s *MemorySink) Named(name string) []Event {
	var out []Event
	for _, event := range s.Events() {
		if event.Name == name {
			out = append(out, event)
		}
	}
	return out
}
