// Package telemetry provides the engine's non-blocking diagnostic pipeline:
// structured log and metric events emitted from hot paths into a bounded
// queue, drained by a background exporter. Emission never blocks a build.
package telemetry

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metric names emitted by the engine.
const (
	MetricBuildLatencyMS = "build_latency_ms"
	MetricOpenAttempts   = "open_attempts"
)

// Kind tags an event payload.
type Kind string

const (
	KindLog    Kind = "log"
	KindMetric Kind = "metric"
)

// Scope carries the correlation fields attached to every event.
type Scope struct {
	StreamID  string `json:"stream_id,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
	Direction string `json:"direction,omitempty"`
	Path      string `json:"path,omitempty"`
	Component string `json:"component,omitempty"`
}

// Event is the normalized emission envelope.
type Event struct {
	Kind        Kind              `json:"kind"`
	TimestampMS int64             `json:"timestamp_ms"`
	Scope       Scope             `json:"scope"`
	Name        string            `json:"name"`
	Severity    string            `json:"severity,omitempty"`
	Message     string            `json:"message,omitempty"`
	Value       float64           `json:"value,omitempty"`
	Unit        string            `json:"unit,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Sink exports normalized events.
type Sink interface {
	Export(ctx context.Context, event Event) error
}

// Emitter is the emission handle used by engine components.
type Emitter interface {
	Log(name, severity, message string, attributes map[string]string, scope Scope)
	Metric(name string, value float64, unit string, attributes map[string]string, scope Scope)
}

type nopEmitter struct{}

func (nopEmitter) Log(string, string, string, map[string]string, Scope)     {}
func (nopEmitter) Metric(string, float64, string, map[string]string, Scope) {}

// emitterHolder keeps the concrete type stored in the atomic.Value stable
// across swaps of different Emitter implementations.
type emitterHolder struct {
	emitter Emitter
}

var defaultEmitter atomic.Value

func init() {
	defaultEmitter.Store(emitterHolder{emitter: nopEmitter{}})
}

// SetDefault replaces the process default emitter; nil restores the no-op.
func SetDefault(e Emitter) {
	if e == nil {
		e = nopEmitter{}
	}
	defaultEmitter.Store(emitterHolder{emitter: e})
}

// Default returns the process default emitter.
func Default() Emitter {
	holder, ok := defaultEmitter.Load().(emitterHolder)
	if !ok || holder.emitter == nil {
		return nopEmitter{}
	}
	return holder.emitter
}

// Config bounds the pipeline queue and export behavior.
type Config struct {
	QueueCapacity int
	ExportTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueCapacity < 1 {
		c.QueueCapacity = 128
	}
	if c.ExportTimeout <= 0 {
		c.ExportTimeout = 200 * time.Millisecond
	}
	return c
}

// Pipeline queues events and exports them on a background goroutine. When
// the queue is full the event is dropped and counted; hot paths never wait.
type Pipeline struct {
	sink Sink
	cfg  Config

	queue chan Event
	stop  chan struct{}

	stopOnce sync.Once
	wg       sync.WaitGroup

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	exported atomic.Uint64
	failed   atomic.Uint64
}

type discardSink struct{}

func (discardSink) Export(context.Context, Event) error { return nil }

// NewPipeline constructs and starts a pipeline draining into sink.
func NewPipeline(sink Sink, cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	if sink == nil {
		sink = discardSink{}
	}
	p := &Pipeline{
		sink:  sink,
		cfg:   cfg,
		queue: make(chan Event, cfg.QueueCapacity),
		stop:  make(chan struct{}),
	}
	p.wg.Add(1)
	go p.drain()
	return p
}

// Close drains what is queued and stops the exporter.
func (p *Pipeline) Close() error {
	p.stopOnce.Do(func() {
		close(p.stop)
		p.wg.Wait()
	})
	return nil
}

// Stats is a point-in-time counter snapshot.
type Stats struct {
	Enqueued uint64
	Dropped  uint64
	Exported uint64
	Failed   uint64
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Enqueued: p.enqueued.Load(),
		Dropped:  p.dropped.Load(),
		Exported: p.exported.Load(),
		Failed:   p.failed.Load(),
	}
}

// Log enqueues a structured log event without blocking.
func (p *Pipeline) Log(name, severity, message string, attributes map[string]string, scope Scope) {
	p.enqueue(Event{
		Kind:        KindLog,
		TimestampMS: time.Now().UnixMilli(),
		Scope:       scope,
		Name:        strings.TrimSpace(name),
		Severity:    strings.TrimSpace(severity),
		Message:     message,
		Attributes:  copyAttributes(attributes),
	})
}

// Metric enqueues a metric sample without blocking.
func (p *Pipeline) Metric(name string, value float64, unit string, attributes map[string]string, scope Scope) {
	p.enqueue(Event{
		Kind:        KindMetric,
		TimestampMS: time.Now().UnixMilli(),
		Scope:       scope,
		Name:        strings.TrimSpace(name),
		Value:       value,
		Unit:        strings.TrimSpace(unit),
		Attributes:  copyAttributes(attributes),
	})
}

func (p *Pipeline) enqueue(event Event) {
	select {
	case p.queue <- event:
		p.enqueued.Add(1)
	default:
		p.dropped.Add(1)
	}
}

func (p *Pipeline) drain() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			for {
				select {
				case event := <-p.queue:
					p.export(event)
				default:
					return
				}
			}
		case event := <-p.queue:
			p.export(event)
		}
	}
}

func (p *Pipeline) export(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.ExportTimeout)
	defer cancel()
	if err := p.sink.Export(ctx, event); err != nil {
		p.failed.Add(1)
		return
	}
	p.exported.Add(1)
}

func copyAttributes(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
