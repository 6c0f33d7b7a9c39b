// Package audio defines the shared stream-acquisition domain types: directions,
// sharing modes, transport policies, and the result-code taxonomy surfaced to
// embedding layers.
package audio

import "fmt"

// Unspecified is the sentinel for numeric builder fields the caller left unset.
const Unspecified int32 = 0

// SessionIDNone marks a stream that is not attached to any audio session.
const SessionIDNone int32 = 0

// FrameChannelLimit is the platform bound on channels per frame.
const FrameChannelLimit int32 = 32

// Sample-rate plausibility bounds. The service performs the authoritative
// check; these only reject values far outside any conceivable hardware.
const (
	SampleRateHzMin int32 = 8000
	SampleRateHzMax int32 = 1600000
)

// Frames-per-data-callback plausibility bounds.
const (
	FramesPerCallbackMin int32 = 1
	FramesPerCallbackMax int32 = 1024 * 1024
)

// Direction selects capture or playback.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Validate enforces supported direction values.
func (d Direction) Validate() error {
	switch d {
	case DirectionInput, DirectionOutput:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported direction: %q", d)
	}
}

// SharingMode controls endpoint ownership.
type SharingMode string

const (
	SharingModeShared    SharingMode = "shared"
	SharingModeExclusive SharingMode = "exclusive"
)

// Validate enforces supported sharing-mode values.
func (m SharingMode) Validate() error {
	switch m {
	case SharingModeShared, SharingModeExclusive:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported sharing_mode: %q", m)
	}
}

// PerformanceMode trades latency against power.
type PerformanceMode string

const (
	PerformanceModeNone        PerformanceMode = "none"
	PerformanceModePowerSaving PerformanceMode = "power_saving"
	PerformanceModeLowLatency  PerformanceMode = "low_latency"
)

// Validate enforces the three supported performance modes.
func (m PerformanceMode) Validate() error {
	switch m {
	case PerformanceModeNone, PerformanceModePowerSaving, PerformanceModeLowLatency:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported performance_mode: %q", m)
	}
}

// Format is the sample encoding requested for the stream.
type Format string

const (
	FormatUnspecified Format = ""
	FormatPCMI16      Format = "pcm_i16"
	FormatPCMI24      Format = "pcm_i24_packed"
	FormatPCMI32      Format = "pcm_i32"
	FormatPCMFloat    Format = "pcm_float"
)

// Validate enforces supported sample formats; unspecified is accepted and
// left for the transport to negotiate.
func (f Format) Validate() error {
	switch f {
	case FormatUnspecified, FormatPCMI16, FormatPCMI24, FormatPCMI32, FormatPCMFloat:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported format: %q", f)
	}
}

// InputPreset tunes the capture pipeline for its intended use.
type InputPreset string

const (
	InputPresetUnspecified        InputPreset = ""
	InputPresetGeneric            InputPreset = "generic"
	InputPresetCamcorder          InputPreset = "camcorder"
	InputPresetVoiceRecognition   InputPreset = "voice_recognition"
	InputPresetVoiceCommunication InputPreset = "voice_communication"
	InputPresetUnprocessed        InputPreset = "unprocessed"
)

// Validate enforces supported input presets.
func (p InputPreset) Validate() error {
	switch p {
	case InputPresetUnspecified, InputPresetGeneric, InputPresetCamcorder,
		InputPresetVoiceRecognition, InputPresetVoiceCommunication, InputPresetUnprocessed:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported input_preset: %q", p)
	}
}

// Usage describes why the app is playing audio.
type Usage string

const (
	UsageUnspecified        Usage = ""
	UsageMedia              Usage = "media"
	UsageVoiceCommunication Usage = "voice_communication"
	UsageAlarm              Usage = "alarm"
	UsageNotification       Usage = "notification"
	UsageGame               Usage = "game"
	UsageAssistant          Usage = "assistant"
)

// Validate enforces supported usage values.
func (u Usage) Validate() error {
	switch u {
	case UsageUnspecified, UsageMedia, UsageVoiceCommunication, UsageAlarm,
		UsageNotification, UsageGame, UsageAssistant:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported usage: %q", u)
	}
}

// ContentType describes what the app is playing.
type ContentType string

const (
	ContentTypeUnspecified  ContentType = ""
	ContentTypeSpeech       ContentType = "speech"
	ContentTypeMusic        ContentType = "music"
	ContentTypeMovie        ContentType = "movie"
	ContentTypeSonification ContentType = "sonification"
)

// Validate enforces supported content types.
func (c ContentType) Validate() error {
	switch c {
	case ContentTypeUnspecified, ContentTypeSpeech, ContentTypeMusic,
		ContentTypeMovie, ContentTypeSonification:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported content_type: %q", c)
	}
}

// PrivacyRequest is the caller's tri-state privacy-sensitivity request.
type PrivacyRequest string

const (
	PrivacyUnspecified PrivacyRequest = ""
	PrivacyEnabled     PrivacyRequest = "enabled"
	PrivacyDisabled    PrivacyRequest = "disabled"
)

// Validate enforces supported privacy request values.
func (p PrivacyRequest) Validate() error {
	switch p {
	case PrivacyUnspecified, PrivacyEnabled, PrivacyDisabled:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported privacy request: %q", p)
	}
}

// TransportPolicy governs whether the low-latency shared-memory path may be
// attempted for a device class.
type TransportPolicy string

const (
	PolicyUnspecified TransportPolicy = ""
	PolicyNever       TransportPolicy = "never"
	PolicyAuto        TransportPolicy = "auto"
	PolicyAlways      TransportPolicy = "always"
)

// Validate enforces supported transport-policy values.
func (p TransportPolicy) Validate() error {
	switch p {
	case PolicyUnspecified, PolicyNever, PolicyAuto, PolicyAlways:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported transport_policy: %q", p)
	}
}

// PolicyKind selects which policy table the system service is asked for.
type PolicyKind string

const (
	PolicyKindDefault   PolicyKind = "default"
	PolicyKindExclusive PolicyKind = "exclusive"
)

// Validate enforces supported policy kinds.
func (k PolicyKind) Validate() error {
	switch k {
	case PolicyKindDefault, PolicyKindExclusive:
		return nil
	default:
		return Errorf(ResultIllegalArgument, "unsupported policy_kind: %q", k)
	}
}

// PolicyInfo is one (device, transport-capability) pair reported by the
// system policy service.
type PolicyInfo struct {
	Device string
	Policy TransportPolicy
}

// TransportPath names the concrete data path backing an opened stream.
type TransportPath string

const (
	PathLowLatency TransportPath = "low_latency"
	PathBuffered   TransportPath = "buffered"
)

// Attribution identifies the requesting app for audit and policy purposes.
type Attribution struct {
	PackageName string
	Tag         string
}

func (a Attribution) String() string {
	if a.PackageName == "" && a.Tag == "" {
		return "(none)"
	}
	return fmt.Sprintf("%s/%s", a.PackageName, a.Tag)
}
