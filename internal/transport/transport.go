// Package transport defines the collaborator boundary to the platform audio
// service: the request a stream variant submits when acquiring its data path
// and the negotiated parameters the service answers with. The engine never
// moves audio itself.
package transport

import "github.com/lynxaudio/audiogate/api/audio"

// OpenRequest carries the finalized configuration to the service when a
// stream variant acquires its endpoint.
type OpenRequest struct {
	Path             audio.TransportPath
	Direction        audio.Direction
	SharingMode      audio.SharingMode
	SampleRate       int32
	ChannelCount     int32
	ChannelMask      uint32
	Format           audio.Format
	SessionID        int32
	DeviceID         int32
	PrivacySensitive bool
	Usage            audio.Usage
	ContentType      audio.ContentType
	InputPreset      audio.InputPreset
	Attribution      audio.Attribution
}

// Negotiated reports the parameters the service actually granted.
type Negotiated struct {
	SampleRate   int32
	ChannelCount int32
	Format       audio.Format
	SharingMode  audio.SharingMode
	DeviceID     int32
	BurstFrames  int32
}

// Endpoint is one acquired transport resource. Close releases it; the data
// plane behind it is out of engine scope.
type Endpoint interface {
	Negotiated() Negotiated
	Close() error
}

// Client acquires endpoints from the platform audio service. OpenEndpoint
// may block on service IPC and returns an *audio.Error on refusal.
type Client interface {
	OpenEndpoint(req OpenRequest) (Endpoint, error)
}

// ClientFunc adapts a function to the Client interface; used heavily by
// tests to inject open outcomes.
type ClientFunc func(req OpenRequest) (Endpoint, error)

func (f ClientFunc) OpenEndpoint(req OpenRequest) (Endpoint, error) {
	return f(req)
}
