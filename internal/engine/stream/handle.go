package stream

import "sync/atomic"

// Handle is the reference-counted ownership wrapper around an opened stream.
// The orchestrator holds one reference while constructing and opening; the
// caller receives exactly one retained reference on success and must balance
// it with a single Release. The underlying endpoint is torn down when the
// count reaches zero.
type Handle struct {
	Stream
	refs atomic.Int32
}

// Manage wraps a freshly constructed stream with an owning reference.
func Manage(s Stream) *Handle {
	h := &Handle{Stream: s}
	h.refs.Store(1)
	return h
}

// Retain adds one reference.
func (h *Handle) Retain() {
	h.refs.Add(1)
}

// Release drops one reference; at zero the stream's transport resources are
// released. Releasing below zero is a caller bug and panics loudly rather
// than masking a double release.
func (h *Handle) Release() {
	switch n := h.refs.Add(-1); {
	case n == 0:
		h.Stream.shutdown()
	case n < 0:
		panic("stream: release without matching retain")
	}
}

// Refs reports the current reference count.
func (h *Handle) Refs() int32 {
	return h.refs.Load()
}
