package stream

import (
	"testing"

	"github.com/lynxaudio/audiogate/api/audio"
	"github.com/lynxaudio/audiogate/internal/engine/params"
	"github.com/lynxaudio/audiogate/internal/transport"
)

type fakeEndpoint struct {
	negotiated transport.Negotiated
	closed     int
}

func (e *fakeEndpoint) Negotiated() transport.Negotiated { return e.negotiated }
func (e *fakeEndpoint) Close() error                     { e.closed++; return nil }

func recordingClient(requests *[]transport.OpenRequest, endpoint *fakeEndpoint, err error) transport.Client {
	return transport.ClientFunc(func(req transport.OpenRequest) (transport.Endpoint, error) {
		if requests != nil {
			*requests = append(*requests, req)
		}
		if err != nil {
			return nil, err
		}
		return endpoint, nil
	})
}

func TestFactorySelectsVariantByDirectionAndPath(t *testing.T) {
	t.Parallel()

	clients := Clients{
		LowLatency: recordingClient(nil, &fakeEndpoint{}, nil),
		Buffered:   recordingClient(nil, &fakeEndpoint{}, nil),
	}

	cases := []struct {
		direction      audio.Direction
		tryLowLatency  bool
		wantLowLatency bool
	}{
		{audio.DirectionInput, true, true},
		{audio.DirectionInput, false, false},
		{audio.DirectionOutput, true, true},
		{audio.DirectionOutput, false, false},
	}

	seen := map[string]bool{}
	for _, tc := range cases {
		s, err := New(tc.direction, tc.tryLowLatency, clients)
		if err != nil {
			t.Fatalf("New(%v, %v): %v", tc.direction, tc.tryLowLatency, err)
		}
		if s.Direction() != tc.direction {
			t.Fatalf("expected direction %v, got %v", tc.direction, s.Direction())
		}
		if s.LowLatencyBacked() != tc.wantLowLatency {
			t.Fatalf("expected lowLatency=%v for %v/%v", tc.wantLowLatency, tc.direction, tc.tryLowLatency)
		}
		if s.ID() == "" || seen[s.ID()] {
			t.Fatalf("stream ids must be unique and non-empty")
		}
		seen[s.ID()] = true
	}
}

func TestFactoryRejectsBadDirection(t *testing.T) {
	t.Parallel()

	_, err := New("sideways", true, Clients{})
	if audio.CodeOf(err) != audio.ResultIllegalArgument {
		t.Fatalf("expected illegal_argument, got %v", err)
	}
}

func TestOpenRoutesToPathClient(t *testing.T) {
	t.Parallel()

	var lowReqs, bufReqs []transport.OpenRequest
	clients := Clients{
		LowLatency: recordingClient(&lowReqs, &fakeEndpoint{}, nil),
		Buffered:   recordingClient(&bufReqs, &fakeEndpoint{}, nil),
	}

	cfg := params.StreamConfig{
		Direction:    audio.DirectionOutput,
		SharingMode:  audio.SharingModeShared,
		SampleRate:   44100,
		ChannelCount: 2,
	}

	low, _ := New(audio.DirectionOutput, true, clients)
	if err := low.Open(cfg, false); err != nil {
		t.Fatalf("low-latency open: %v", err)
	}
	buf, _ := New(audio.DirectionOutput, false, clients)
	if err := buf.Open(cfg, true); err != nil {
		t.Fatalf("buffered open: %v", err)
	}

	if len(lowReqs) != 1 || lowReqs[0].Path != audio.PathLowLatency {
		t.Fatalf("expected one low-latency request, got %+v", lowReqs)
	}
	if len(bufReqs) != 1 || bufReqs[0].Path != audio.PathBuffered {
		t.Fatalf("expected one buffered request, got %+v", bufReqs)
	}
	if !bufReqs[0].PrivacySensitive {
		t.Fatalf("privacy flag must reach the transport request")
	}
	if lowReqs[0].SampleRate != 44100 {
		t.Fatalf("config fields must reach the transport request")
	}
}

func TestOpenTwiceIsInvalidState(t *testing.T) {
	t.Parallel()

	clients := Clients{Buffered: recordingClient(nil, &fakeEndpoint{}, nil)}
	s, _ := New(audio.DirectionInput, false, clients)
	cfg := params.StreamConfig{Direction: audio.DirectionInput, SharingMode: audio.SharingModeShared}
	if err := s.Open(cfg, false); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.Open(cfg, false); audio.CodeOf(err) != audio.ResultInvalidState {
		t.Fatalf("expected invalid_state on reopen, got %v", err)
	}
}

func TestOpenFailureSurfacesTransportCode(t *testing.T) {
	t.Parallel()

	refuse := audio.Errorf(audio.ResultUnavailable, "no mmap support")
	clients := Clients{LowLatency: recordingClient(nil, nil, refuse)}
	s, _ := New(audio.DirectionOutput, true, clients)
	err := s.Open(params.StreamConfig{Direction: audio.DirectionOutput, SharingMode: audio.SharingModeShared}, false)
	if audio.CodeOf(err) != audio.ResultUnavailable {
		t.Fatalf("expected unavailable pass-through, got %v", err)
	}
}

func TestHandleLifecycle(t *testing.T) {
	t.Parallel()

	endpoint := &fakeEndpoint{negotiated: transport.Negotiated{SampleRate: 48000}}
	clients := Clients{Buffered: recordingClient(nil, endpoint, nil)}
	s, _ := New(audio.DirectionOutput, false, clients)
	if err := s.Open(params.StreamConfig{Direction: audio.DirectionOutput, SharingMode: audio.SharingModeShared}, false); err != nil {
		t.Fatalf("open: %v", err)
	}

	h := Manage(s)
	if h.Refs() != 1 {
		t.Fatalf("fresh handle must hold one reference, got %d", h.Refs())
	}
	h.Retain()
	if h.Refs() != 2 {
		t.Fatalf("expected 2 refs after retain, got %d", h.Refs())
	}
	h.Release()
	if endpoint.closed != 0 {
		t.Fatalf("endpoint must stay open while references remain")
	}
	h.Release()
	if endpoint.closed != 1 {
		t.Fatalf("endpoint must close exactly once at refcount zero, closed=%d", endpoint.closed)
	}
	if h.Actual().SampleRate != 48000 {
		t.Fatalf("negotiated parameters must be retained")
	}
}

func TestHandleDoubleReleasePanics(t *testing.T) {
	t.Parallel()

	h := Manage(&bufferedPlayback{core: newCore(nil)})
	h.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on release below zero")
		}
	}()
	h.Release()
}

func TestRegistryTracksStreams(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	s, _ := New(audio.DirectionOutput, false, Clients{Buffered: recordingClient(nil, &fakeEndpoint{}, nil)})
	reg.Register(s)
	reg.Register(s) // idempotent
	if reg.Len() != 1 {
		t.Fatalf("expected one tracked stream, got %d", reg.Len())
	}
	reg.Deregister(s.ID())
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry after deregister, got %d", reg.Len())
	}
}
