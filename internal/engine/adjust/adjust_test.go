package adjust

import (
	"testing"

	"github.com/lynxaudio/audiogate/api/audio"
	"github.com/lynxaudio/audiogate/internal/engine/params"
)

func baseConfig() params.StreamConfig {
	return params.StreamConfig{
		Direction:       audio.DirectionOutput,
		SharingMode:     audio.SharingModeShared,
		SampleRate:      48000,
		ChannelCount:    2,
		PerformanceMode: audio.PerformanceModeLowLatency,
		SessionID:       audio.SessionIDNone,
	}
}

func TestExclusiveDowngradedWhenExclusivePolicyNever(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.SharingMode = audio.SharingModeExclusive

	plan, err := Apply(cfg, audio.PolicyAuto, audio.PolicyNever)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Config.SharingMode != audio.SharingModeShared {
		t.Fatalf("expected downgrade to shared, got %q", plan.Config.SharingMode)
	}
	if !plan.SharingDowngraded {
		t.Fatalf("downgrade must be reported")
	}

	// Idempotent: adjusting the already-downgraded config yields shared again.
	again, err := Apply(plan.Config, audio.PolicyAuto, audio.PolicyNever)
	if err != nil {
		t.Fatalf("unexpected error on re-adjust: %v", err)
	}
	if again.Config.SharingMode != audio.SharingModeShared {
		t.Fatalf("re-adjust must stay shared, got %q", again.Config.SharingMode)
	}
}

func TestExclusiveKeptWhenExclusivePolicyAllows(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.SharingMode = audio.SharingModeExclusive

	plan, err := Apply(cfg, audio.PolicyAuto, audio.PolicyAuto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Config.SharingMode != audio.SharingModeExclusive {
		t.Fatalf("exclusive must survive, got %q", plan.Config.SharingMode)
	}
}

func TestPathEligibilityFromNormalPolicy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		normal         audio.TransportPolicy
		wantLowLatency bool
		wantBuffered   bool
	}{
		{name: "auto allows both", normal: audio.PolicyAuto, wantLowLatency: true, wantBuffered: true},
		{name: "never forbids low latency", normal: audio.PolicyNever, wantLowLatency: false, wantBuffered: true},
		{name: "always forbids buffered", normal: audio.PolicyAlways, wantLowLatency: true, wantBuffered: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			plan, err := Apply(baseConfig(), tc.normal, audio.PolicyAuto)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.AllowLowLatency != tc.wantLowLatency || plan.AllowBuffered != tc.wantBuffered {
				t.Fatalf("expected low_latency=%v buffered=%v, got %v/%v",
					tc.wantLowLatency, tc.wantBuffered, plan.AllowLowLatency, plan.AllowBuffered)
			}
		})
	}
}

func TestLowLatencyForbiddenByPerformanceMode(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.PerformanceMode = audio.PerformanceModePowerSaving
	plan, err := Apply(cfg, audio.PolicyAuto, audio.PolicyAuto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.AllowLowLatency {
		t.Fatalf("low-latency path must be off without low-latency performance mode")
	}
	if !plan.AllowBuffered {
		t.Fatalf("buffered path must stay available")
	}
}

func TestLowLatencyForbiddenBySessionID(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.SessionID = 42
	// Session id overrides even an ALWAYS policy for the low-latency side.
	_, err := Apply(cfg, audio.PolicyAlways, audio.PolicyAuto)
	if err == nil {
		t.Fatalf("always policy with session id leaves no backend; expected failure")
	}
	if audio.CodeOf(err) != audio.ResultIllegalArgument {
		t.Fatalf("expected illegal_argument, got %v", audio.CodeOf(err))
	}

	plan, err := Apply(cfg, audio.PolicyAuto, audio.PolicyAuto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.AllowLowLatency {
		t.Fatalf("session id must forbid the low-latency path")
	}
}

func TestNoBackendIsFatal(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.PerformanceMode = audio.PerformanceModeNone
	_, err := Apply(cfg, audio.PolicyAlways, audio.PolicyAuto)
	if err == nil {
		t.Fatalf("expected no-backend failure")
	}
	if audio.CodeOf(err) != audio.ResultIllegalArgument {
		t.Fatalf("expected illegal_argument, got %v", audio.CodeOf(err))
	}
}

func TestPrivacyResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		request audio.PrivacyRequest
		preset  audio.InputPreset
		want    bool
	}{
		{name: "explicit enabled", request: audio.PrivacyEnabled, preset: audio.InputPresetGeneric, want: true},
		{name: "explicit disabled beats preset", request: audio.PrivacyDisabled, preset: audio.InputPresetVoiceCommunication, want: false},
		{name: "unspecified voice communication", request: audio.PrivacyUnspecified, preset: audio.InputPresetVoiceCommunication, want: true},
		{name: "unspecified camcorder", request: audio.PrivacyUnspecified, preset: audio.InputPresetCamcorder, want: true},
		{name: "unspecified generic", request: audio.PrivacyUnspecified, preset: audio.InputPresetGeneric, want: false},
		{name: "unspecified no preset", request: audio.PrivacyUnspecified, preset: audio.InputPresetUnspecified, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseConfig()
			cfg.Direction = audio.DirectionInput
			cfg.Privacy = tc.request
			cfg.InputPreset = tc.preset

			plan, err := Apply(cfg, audio.PolicyAuto, audio.PolicyAuto)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.PrivacySensitive != tc.want {
				t.Fatalf("expected privacy=%v, got %v", tc.want, plan.PrivacySensitive)
			}
		})
	}
}
