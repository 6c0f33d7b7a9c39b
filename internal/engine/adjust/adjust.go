// Package adjust applies the cross-field rules that override naive user
// intent once the transport policies are known: sharing-mode downgrade, path
// eligibility, and privacy-sensitivity defaulting.
package adjust

import (
	"github.com/lynxaudio/audiogate/api/audio"
	"github.com/lynxaudio/audiogate/internal/engine/params"
)

// Plan is the finalized tuple consumed by the orchestrator. Config carries
// the possibly-downgraded sharing mode; the original record is not written
// back.
type Plan struct {
	Config            params.StreamConfig
	AllowLowLatency   bool
	AllowBuffered     bool
	PrivacySensitive  bool
	SharingDowngraded bool
}

// Apply derives the final plan from a validated configuration and the two
// resolved policies. Rules run in a fixed order; later rules may restrict
// what earlier ones allowed. The only failure is the no-backend condition.
func Apply(cfg params.StreamConfig, normal, exclusive audio.TransportPolicy) (Plan, error) {
	plan := Plan{Config: cfg}

	// Exclusive access is an optimization hint, not a hard requirement:
	// when the exclusive policy forbids it, fall back to shared silently.
	if cfg.SharingMode == audio.SharingModeExclusive && exclusive == audio.PolicyNever {
		plan.Config.SharingMode = audio.SharingModeShared
		plan.SharingDowngraded = true
	}

	plan.AllowLowLatency = normal != audio.PolicyNever
	plan.AllowBuffered = normal != audio.PolicyAlways

	// The low-latency path only supports the low-latency performance mode.
	if cfg.PerformanceMode != audio.PerformanceModeLowLatency {
		plan.AllowLowLatency = false
	}
	// Session-scoped effect attachment is only supported on the buffered path.
	if cfg.SessionID != audio.SessionIDNone {
		plan.AllowLowLatency = false
	}

	if !plan.AllowLowLatency && !plan.AllowBuffered {
		return Plan{}, audio.Errorf(audio.ResultIllegalArgument,
			"no backend available: neither low-latency nor buffered path is allowed")
	}

	plan.PrivacySensitive = resolvePrivacy(cfg)
	return plan, nil
}

// resolvePrivacy starts from false, honors an explicit request, and defaults
// to true for capture presets whose content is sensitive by nature.
func resolvePrivacy(cfg params.StreamConfig) bool {
	switch cfg.Privacy {
	case audio.PrivacyEnabled:
		return true
	case audio.PrivacyDisabled:
		return false
	default:
		return cfg.InputPreset == audio.InputPresetCamcorder ||
			cfg.InputPreset == audio.InputPresetVoiceCommunication
	}
}
