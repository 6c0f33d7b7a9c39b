package transport

import (
	"sync"

	"github.com/lynxaudio/audiogate/api/audio"
)

// LoopbackOptions tune the in-process endpoint used by tests and the demo.
type LoopbackOptions struct {
	// PreferredRate is granted when the request leaves the rate unspecified.
	PreferredRate int32
	// BurstFrames reported back per endpoint.
	BurstFrames int32
	// RefuseLowLatency makes low-latency opens fail with unavailable,
	// which is how real hardware without shared-memory support behaves.
	RefuseLowLatency bool
}

// Loopback is an in-process Client that grants endpoints backed by a byte
// sink. It exists to exercise the open protocol; it performs no real I/O.
type Loopback struct {
	opts LoopbackOptions

	mu     sync.Mutex
	opened int
}

// NewLoopback returns a loopback client with sane negotiation defaults.
func NewLoopback(opts LoopbackOptions) *Loopback {
	if opts.PreferredRate <= 0 {
		opts.PreferredRate = 48000
	}
	if opts.BurstFrames <= 0 {
		opts.BurstFrames = 192
	}
	return &Loopback{opts: opts}
}

// OpenEndpoint grants an endpoint, filling unspecified fields with the
// loopback's preferred values.
func (l *Loopback) OpenEndpoint(req OpenRequest) (Endpoint, error) {
	if l.opts.RefuseLowLatency && req.Path == audio.PathLowLatency {
		return nil, audio.Errorf(audio.ResultUnavailable, "low-latency path not supported by loopback device")
	}

	negotiated := Negotiated{
		SampleRate:   req.SampleRate,
		ChannelCount: req.ChannelCount,
		Format:       req.Format,
		SharingMode:  req.SharingMode,
		DeviceID:     req.DeviceID,
		BurstFrames:  l.opts.BurstFrames,
	}
	if negotiated.SampleRate == audio.Unspecified {
		negotiated.SampleRate = l.opts.PreferredRate
	}
	if negotiated.ChannelCount == audio.Unspecified {
		negotiated.ChannelCount = 2
	}
	if negotiated.Format == audio.FormatUnspecified {
		negotiated.Format = audio.FormatPCMI16
	}

	l.mu.Lock()
	l.opened++
	l.mu.Unlock()

	return &loopbackEndpoint{owner: l, negotiated: negotiated}, nil
}

// OpenCount reports how many endpoints have been granted.
func (l *Loopback) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opened
}

type loopbackEndpoint struct {
	owner      *Loopback
	negotiated Negotiated

	mu      sync.Mutex
	written int64
	closed  bool
}

func (e *loopbackEndpoint) Negotiated() Negotiated {
	return e.negotiated
}

func (e *loopbackEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return audio.Errorf(audio.ResultInvalidState, "endpoint already closed")
	}
	e.closed = true
	return nil
}

// Write discards audio after accounting for it; the demo uses the counter to
// show that data flowed through an opened stream.
func (e *loopbackEndpoint) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, audio.Errorf(audio.ResultInvalidState, "write on closed endpoint")
	}
	e.written += int64(len(p))
	return len(p), nil
}

// Written reports total bytes accepted by the endpoint.
func (e *loopbackEndpoint) Written() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.written
}
