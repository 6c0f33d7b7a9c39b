// Package params models the stream configuration record and its plausibility
// validation. Validation is a pure predicate: it touches no resources and
// rejects values that are out of any conceivable hardware range before the
// platform service is asked to do the authoritative check.
package params

import (
	"fmt"

	"github.com/lynxaudio/audiogate/api/audio"
)

// StreamConfig is the builder record. It is treated as immutable once it has
// passed Validate; the constraint adjuster derives a copy rather than writing
// back. Callers must not share one StreamConfig across concurrent Build calls.
type StreamConfig struct {
	Direction       audio.Direction
	SharingMode     audio.SharingMode
	SampleRate      int32 // Hz, audio.Unspecified to negotiate
	ChannelCount    int32 // audio.Unspecified to negotiate
	ChannelMask     uint32
	Format          audio.Format
	PerformanceMode audio.PerformanceMode
	SessionID       int32 // audio.SessionIDNone when no effects session is requested
	DeviceID        int32 // audio.Unspecified to let the service route

	Usage       audio.Usage
	ContentType audio.ContentType
	InputPreset audio.InputPreset

	Privacy audio.PrivacyRequest

	// HasDataCallback records whether the caller installed a data callback;
	// the callback itself is out of engine scope.
	HasDataCallback   bool
	FramesPerCallback int32 // audio.Unspecified when the caller did not set one

	Attribution audio.Attribution
}

// Defaulted fills zero-valued enum fields with their baseline values so a
// partially populated record still passes enum-membership checks.
func (c StreamConfig) Defaulted() StreamConfig {
	if c.SharingMode == "" {
		c.SharingMode = audio.SharingModeShared
	}
	if c.PerformanceMode == "" {
		c.PerformanceMode = audio.PerformanceModeNone
	}
	return c
}

// Validate runs the plausibility gate. Checks run in a fixed order and stop
// at the first failure: base parameter invariants, then performance-mode
// membership, then frames-per-callback bounds.
func (c StreamConfig) Validate() error {
	if err := c.validateBase(); err != nil {
		return err
	}
	if err := c.PerformanceMode.Validate(); err != nil {
		return fmt.Errorf("performance mode: %w", err)
	}
	if c.FramesPerCallback != audio.Unspecified &&
		(c.FramesPerCallback < audio.FramesPerCallbackMin ||
			c.FramesPerCallback > audio.FramesPerCallbackMax) {
		return audio.Errorf(audio.ResultOutOfRange,
			"frames_per_callback %d outside [%d, %d]",
			c.FramesPerCallback, audio.FramesPerCallbackMin, audio.FramesPerCallbackMax)
	}
	return nil
}

// validateBase checks the invariants shared with every stream parameter
// record: numeric ranges and enum membership.
func (c StreamConfig) validateBase() error {
	if err := c.Direction.Validate(); err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	if err := c.SharingMode.Validate(); err != nil {
		return fmt.Errorf("sharing mode: %w", err)
	}
	if c.SampleRate != audio.Unspecified &&
		(c.SampleRate < audio.SampleRateHzMin || c.SampleRate > audio.SampleRateHzMax) {
		return audio.Errorf(audio.ResultInvalidRate,
			"sample_rate %d outside [%d, %d]", c.SampleRate, audio.SampleRateHzMin, audio.SampleRateHzMax)
	}
	if c.ChannelCount != audio.Unspecified &&
		(c.ChannelCount < 1 || c.ChannelCount > audio.FrameChannelLimit) {
		return audio.Errorf(audio.ResultOutOfRange,
			"channel_count %d outside [1, %d]", c.ChannelCount, audio.FrameChannelLimit)
	}
	if err := c.Format.Validate(); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := c.Usage.Validate(); err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	if err := c.ContentType.Validate(); err != nil {
		return fmt.Errorf("content type: %w", err)
	}
	if err := c.InputPreset.Validate(); err != nil {
		return fmt.Errorf("input preset: %w", err)
	}
	if err := c.Privacy.Validate(); err != nil {
		return fmt.Errorf("privacy request: %w", err)
	}
	if c.SessionID < 0 {
		return audio.Errorf(audio.ResultIllegalArgument, "session_id %d must be >=0", c.SessionID)
	}
	if c.DeviceID < 0 {
		return audio.Errorf(audio.ResultIllegalArgument, "device_id %d must be >=0", c.DeviceID)
	}
	return nil
}

// Fields returns the configuration flattened for diagnostic emission. The
// rendering is stable so it can be asserted in tests.
func (c StreamConfig) Fields() map[string]string {
	callback := "off"
	if c.HasDataCallback {
		callback = "on"
	}
	return map[string]string{
		"direction":           string(c.Direction),
		"sharing_mode":        string(c.SharingMode),
		"sample_rate":         fmt.Sprintf("%d", c.SampleRate),
		"channel_count":       fmt.Sprintf("%d", c.ChannelCount),
		"channel_mask":        fmt.Sprintf("%#x", c.ChannelMask),
		"format":              string(c.Format),
		"performance_mode":    string(c.PerformanceMode),
		"session_id":          fmt.Sprintf("%d", c.SessionID),
		"device_id":           fmt.Sprintf("%d", c.DeviceID),
		"usage":               string(c.Usage),
		"content_type":        string(c.ContentType),
		"input_preset":        string(c.InputPreset),
		"privacy_request":     string(c.Privacy),
		"data_callback":       callback,
		"frames_per_callback": fmt.Sprintf("%d", c.FramesPerCallback),
		"attribution":         c.Attribution.String(),
	}
}
