// Package stream holds the four concrete stream variants behind one
// interface, the factory that selects among them, and the reference-counted
// handle used to pass an opened stream across the engine boundary.
package stream

import (
	"github.com/google/uuid"

	"github.com/lynxaudio/audiogate/api/audio"
	"github.com/lynxaudio/audiogate/internal/engine/params"
	"github.com/lynxaudio/audiogate/internal/transport"
)

// Stream is one constructed (not yet opened) stream variant. Construction
// allocates only; Open acquires the transport resource and may block.
type Stream interface {
	ID() string
	Direction() audio.Direction
	LowLatencyBacked() bool
	Open(cfg params.StreamConfig, privacySensitive bool) error
	Actual() transport.Negotiated

	// Endpoint exposes the acquired transport resource for the data
	// plane; nil until Open succeeds.
	Endpoint() transport.Endpoint

	// shutdown releases the endpoint; invoked by the handle at refcount zero.
	shutdown()
}

// Clients supplies the transport clients backing each path.
type Clients struct {
	LowLatency transport.Client
	Buffered   transport.Client
}

// New selects the concrete variant for (direction, tryLowLatency). It
// performs no I/O; a bad direction is the only failure.
func New(direction audio.Direction, tryLowLatency bool, clients Clients) (Stream, error) {
	switch direction {
	case audio.DirectionInput:
		if tryLowLatency {
			return &lowLatencyCapture{core: newCore(clients.LowLatency)}, nil
		}
		return &bufferedCapture{core: newCore(clients.Buffered)}, nil
	case audio.DirectionOutput:
		if tryLowLatency {
			return &lowLatencyPlayback{core: newCore(clients.LowLatency)}, nil
		}
		return &bufferedPlayback{core: newCore(clients.Buffered)}, nil
	default:
		return nil, audio.Errorf(audio.ResultIllegalArgument, "bad direction: %q", direction)
	}
}

// core is the state shared by all four variants.
type core struct {
	id       string
	client   transport.Client
	endpoint transport.Endpoint
	actual   transport.Negotiated
}

func newCore(client transport.Client) core {
	return core{id: uuid.NewString(), client: client}
}

func (c *core) ID() string {
	return c.id
}

func (c *core) Actual() transport.Negotiated {
	return c.actual
}

func (c *core) Endpoint() transport.Endpoint {
	return c.endpoint
}

func (c *core) open(req transport.OpenRequest) error {
	if c.endpoint != nil {
		return audio.Errorf(audio.ResultInvalidState, "stream %s already open", c.id)
	}
	if c.client == nil {
		return audio.Errorf(audio.ResultNoService, "no transport client for path %s", req.Path)
	}
	endpoint, err := c.client.OpenEndpoint(req)
	if err != nil {
		return err
	}
	c.endpoint = endpoint
	c.actual = endpoint.Negotiated()
	return nil
}

func (c *core) shutdown() {
	if c.endpoint != nil {
		_ = c.endpoint.Close()
		c.endpoint = nil
	}
}

func (c *core) request(path audio.TransportPath, direction audio.Direction, cfg params.StreamConfig, privacySensitive bool) transport.OpenRequest {
	return transport.OpenRequest{
		Path:             path,
		Direction:        direction,
		SharingMode:      cfg.SharingMode,
		SampleRate:       cfg.SampleRate,
		ChannelCount:     cfg.ChannelCount,
		ChannelMask:      cfg.ChannelMask,
		Format:           cfg.Format,
		SessionID:        cfg.SessionID,
		DeviceID:         cfg.DeviceID,
		PrivacySensitive: privacySensitive,
		Usage:            cfg.Usage,
		ContentType:      cfg.ContentType,
		InputPreset:      cfg.InputPreset,
		Attribution:      cfg.Attribution,
	}
}

type lowLatencyCapture struct{ core }

func (s *lowLatencyCapture) Direction() audio.Direction { return audio.DirectionInput }
func (s *lowLatencyCapture) LowLatencyBacked() bool     { return true }
func (s *lowLatencyCapture) Open(cfg params.StreamConfig, privacySensitive bool) error {
	return s.open(s.request(audio.PathLowLatency, audio.DirectionInput, cfg, privacySensitive))
}

type lowLatencyPlayback struct{ core }

func (s *lowLatencyPlayback) Direction() audio.Direction { return audio.DirectionOutput }
func (s *lowLatencyPlayback) LowLatencyBacked() bool     { return true }
func (s *lowLatencyPlayback) Open(cfg params.StreamConfig, privacySensitive bool) error {
	return s.open(s.request(audio.PathLowLatency, audio.DirectionOutput, cfg, privacySensitive))
}

type bufferedCapture struct{ core }

func (s *bufferedCapture) Direction() audio.Direction { return audio.DirectionInput }
func (s *bufferedCapture) LowLatencyBacked() bool     { return false }
func (s *bufferedCapture) Open(cfg params.StreamConfig, privacySensitive bool) error {
	return s.open(s.request(audio.PathBuffered, audio.DirectionInput, cfg, privacySensitive))
}

type bufferedPlayback struct{ core }

func (s *bufferedPlayback) Direction() audio.Direction { return audio.DirectionOutput }
func (s *bufferedPlayback) LowLatencyBacked() bool     { return false }
func (s *bufferedPlayback) Open(cfg params.StreamConfig, privacySensitive bool) error {
	return s.open(s.request(audio.PathBuffered, audio.DirectionOutput, cfg, privacySensitive))
}
