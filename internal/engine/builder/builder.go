// Package builder drives the end-to-end stream acquisition sequence:
// validate the configuration, resolve transport policies, adjust
// cross-field constraints, construct the preferred stream variant, open it,
// and fall back from the low-latency to the buffered path at most once.
package builder

import (
	"fmt"
	"time"

	"github.com/lynxaudio/audiogate/api/audio"
	"github.com/lynxaudio/audiogate/internal/engine/adjust"
	"github.com/lynxaudio/audiogate/internal/engine/params"
	"github.com/lynxaudio/audiogate/internal/engine/policy"
	"github.com/lynxaudio/audiogate/internal/engine/stream"
	"github.com/lynxaudio/audiogate/internal/observability/metrics"
	"github.com/lynxaudio/audiogate/internal/observability/telemetry"
)

// PolicyProvider is the system policy service boundary. Implementations may
// block; any error is treated as "no policy data".
type PolicyProvider interface {
	QueryPolicyInfo(kind audio.PolicyKind) ([]audio.PolicyInfo, error)
}

// PolicyProviderFunc adapts a function to PolicyProvider.
type PolicyProviderFunc func(kind audio.PolicyKind) ([]audio.PolicyInfo, error)

func (f PolicyProviderFunc) QueryPolicyInfo(kind audio.PolicyKind) ([]audio.PolicyInfo, error) {
	return f(kind)
}

// Options wires the engine's collaborators. Zero values are usable: a nil
// policy provider falls through to compiled defaults, nil metrics record
// nothing, and a nil emitter uses the process default.
type Options struct {
	Policy  PolicyProvider
	Clients stream.Clients
	Tracker stream.Tracker
	Metrics *metrics.BuildMetrics
	Emitter telemetry.Emitter

	// TransportPolicy is the process-wide explicit override for the
	// normal-path policy. It outranks the policy service answer.
	TransportPolicy audio.TransportPolicy
}

// Engine is the stream acquisition engine. Build is synchronous; it may
// block on the policy query and on transport opens, and runs to completion
// on the calling goroutine.
type Engine struct {
	opts Options
}

// New returns an engine with the given collaborators.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// SetTransportPolicy replaces the process-wide explicit policy override.
// Not safe to call concurrently with Build.
func (e *Engine) SetTransportPolicy(p audio.TransportPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.opts.TransportPolicy = p
	return nil
}

// Build acquires exactly one usable stream for cfg or returns a failure
// code, never both. On success the returned handle carries one reference
// owned by the caller, to be balanced by a single ReleaseStream.
func (e *Engine) Build(cfg *params.StreamConfig) (*stream.Handle, error) {
	if cfg == nil {
		return nil, audio.Errorf(audio.ResultNull, "stream configuration is required")
	}
	started := time.Now()
	request := cfg.Defaulted()

	e.emitter().Log("build_requested", "info", "requested stream parameters",
		request.Fields(), telemetry.Scope{Component: "builder", Direction: string(request.Direction)})

	if err := request.Validate(); err != nil {
		e.observeBuild(request, "", "rejected", started)
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	normal := policy.Resolve(e.opts.TransportPolicy, e.query(), audio.PolicyKindDefault)
	exclusive := policy.Resolve(audio.PolicyUnspecified, e.query(), audio.PolicyKindExclusive)

	plan, err := adjust.Apply(request, normal, exclusive)
	if err != nil {
		e.observeBuild(request, "", "rejected", started)
		return nil, err
	}
	if plan.SharingDowngraded {
		e.opts.Metrics.ObserveDowngrade()
		e.emitter().Log("sharing_downgraded", "debug", "exclusive sharing not permitted, using shared",
			nil, telemetry.Scope{Component: "builder", Direction: string(request.Direction)})
	}

	handle, attempts, err := e.openWithFallback(plan)
	if err != nil {
		e.observeBuild(request, "", "failed", started)
		return nil, err
	}

	// Ownership handoff: register for playback tracking, give the caller
	// its reference, then drop the construction reference.
	if e.opts.Tracker != nil {
		e.opts.Tracker.Register(handle.Stream)
	}
	e.logOpenActual(handle)
	handle.Retain()
	handle.Release()
	e.opts.Metrics.StreamHandedOff()
	e.emitter().Metric(telemetry.MetricOpenAttempts, float64(attempts), "count", nil,
		telemetry.Scope{
			Component: "builder",
			StreamID:  handle.ID(),
			Direction: string(handle.Direction()),
			Path:      string(pathOf(handle.Stream)),
		})
	e.observeBuild(request, string(pathOf(handle.Stream)), "success", started)
	return handle, nil
}

// ReleaseStream balances the reference handed out by Build. The stream's
// transport resources are released when no references remain.
func (e *Engine) ReleaseStream(h *stream.Handle) {
	if h == nil {
		return
	}
	if d, ok := e.opts.Tracker.(interface{ Deregister(string) }); ok {
		d.Deregister(h.ID())
	}
	e.opts.Metrics.StreamReleased()
	h.Release()
}

// openWithFallback constructs and opens the preferred variant and retries
// once on the buffered path when the low-latency open fails and policy
// allows it. A discarded stream is fully released before its replacement is
// constructed. The attempt count (1 or 2) is reported for diagnostics.
func (e *Engine) openWithFallback(plan adjust.Plan) (*stream.Handle, int, error) {
	direction := plan.Config.Direction

	preferred, err := stream.New(direction, plan.AllowLowLatency, e.opts.Clients)
	if err != nil {
		return nil, 0, err
	}
	handle := stream.Manage(preferred)

	openErr := preferred.Open(plan.Config, plan.PrivacySensitive)
	if openErr == nil {
		return handle, 1, nil
	}
	e.opts.Metrics.ObserveOpenFailure(string(pathOf(preferred)), audio.CodeOf(openErr).String())

	if !preferred.LowLatencyBacked() || !plan.AllowBuffered {
		handle.Release()
		return nil, 1, openErr
	}

	// Low-latency open failed and the buffered path is still allowed:
	// discard the failed object, then retry exactly once.
	handle.Release()
	e.opts.Metrics.ObserveFallback()
	e.emitter().Log("fallback_attempt", "debug", "low-latency open failed, retrying on buffered path",
		map[string]string{"code": audio.CodeOf(openErr).String()},
		telemetry.Scope{Component: "builder", Direction: string(direction), Path: string(audio.PathLowLatency)})

	fallback, err := stream.New(direction, false, e.opts.Clients)
	if err != nil {
		return nil, 1, err
	}
	handle = stream.Manage(fallback)
	if openErr := fallback.Open(plan.Config, plan.PrivacySensitive); openErr != nil {
		e.opts.Metrics.ObserveOpenFailure(string(pathOf(fallback)), audio.CodeOf(openErr).String())
		handle.Release()
		return nil, 2, openErr
	}
	return handle, 2, nil
}

func (e *Engine) query() policy.QueryFunc {
	if e.opts.Policy == nil {
		return nil
	}
	return e.opts.Policy.QueryPolicyInfo
}

func (e *Engine) emitter() telemetry.Emitter {
	if e.opts.Emitter != nil {
		return e.opts.Emitter
	}
	return telemetry.Default()
}

func (e *Engine) observeBuild(cfg params.StreamConfig, path, outcome string, started time.Time) {
	elapsed := time.Since(started)
	e.opts.Metrics.ObserveBuild(string(cfg.Direction), path, outcome, elapsed.Seconds())
	e.emitter().Metric(telemetry.MetricBuildLatencyMS, float64(elapsed.Microseconds())/1000,
		"ms", map[string]string{"outcome": outcome},
		telemetry.Scope{Component: "builder", Direction: string(cfg.Direction), Path: path})
}

func (e *Engine) logOpenActual(h *stream.Handle) {
	actual := h.Actual()
	e.emitter().Log("open_actual", "info", "stream opened",
		map[string]string{
			"sample_rate":   fmt.Sprintf("%d", actual.SampleRate),
			"channel_count": fmt.Sprintf("%d", actual.ChannelCount),
			"format":        string(actual.Format),
			"sharing_mode":  string(actual.SharingMode),
			"device_id":     fmt.Sprintf("%d", actual.DeviceID),
			"burst_frames":  fmt.Sprintf("%d", actual.BurstFrames),
		},
		telemetry.Scope{
			Component: "builder",
			StreamID:  h.ID(),
			Direction: string(h.Direction()),
			Path:      string(pathOf(h.Stream)),
		})
}

func pathOf(s stream.Stream) audio.TransportPath {
	if s.LowLatencyBacked() {
		return audio.PathLowLatency
	}
	return audio.PathBuffered
}
