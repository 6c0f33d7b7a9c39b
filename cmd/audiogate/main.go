package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lynxaudio/audiogate/api/audio"
	"github.com/lynxaudio/audiogate/internal/config"
	"github.com/lynxaudio/audiogate/internal/engine/builder"
	"github.com/lynxaudio/audiogate/internal/engine/params"
	"github.com/lynxaudio/audiogate/internal/engine/stream"
	"github.com/lynxaudio/audiogate/internal/observability/metrics"
	"github.com/lynxaudio/audiogate/internal/observability/telemetry"
	"github.com/lynxaudio/audiogate/internal/policyfile"
	"github.com/lynxaudio/audiogate/internal/transport"
	pollysource "github.com/lynxaudio/audiogate/providers/source/polly"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	switch os.Args[1] {
	case "validate-policy":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "validate-policy requires a document path")
			os.Exit(2)
		}
		doc, err := policyfile.Load(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "policy document rejected: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("policy document ok: %d default entries, %d exclusive entries\n",
			len(doc.Policies.Default), len(doc.Policies.Exclusive))
	case "resolve":
		if err := runResolve(configPathArg()); err != nil {
			fmt.Fprintf(os.Stderr, "resolve failed: %v\n", err)
			os.Exit(1)
		}
	case "demo":
		if err := runDemo(configPathArg()); err != nil {
			fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("audiogate usage:")
	fmt.Println("  audiogate validate-policy <policy.json>")
	fmt.Println("  audiogate resolve [config.yaml]")
	fmt.Println("  audiogate demo [config.yaml]")
}

func configPathArg() string {
	if len(os.Args) >= 3 {
		return os.Args[2]
	}
	return ""
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// wire assembles an engine from the configuration. The returned cleanup
// stops the telemetry pipeline.
func wire(cfg config.Config, reg *prometheus.Registry, sink telemetry.Sink) (*builder.Engine, func(), error) {
	var provider builder.PolicyProvider
	if cfg.Engine.PolicyFile != "" {
		doc, err := policyfile.Load(cfg.Engine.PolicyFile)
		if err != nil {
			return nil, nil, err
		}
		provider = policyfile.NewProvider(doc)
	}

	if sink == nil && cfg.Telemetry.Enabled {
		otlp, err := telemetry.NewOTLPHTTPSink(telemetry.OTLPHTTPSinkConfig{
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			ServiceName: cfg.Telemetry.ServiceName,
		})
		if err != nil {
			return nil, nil, err
		}
		sink = otlp
	}
	pipeline := telemetry.NewPipeline(sink, telemetry.Config{
		QueueCapacity: cfg.Telemetry.QueueCapacity,
		ExportTimeout: cfg.Telemetry.ExportTimeout(),
	})

	loopback := transport.NewLoopback(transport.LoopbackOptions{
		PreferredRate:    cfg.Transport.PreferredRate,
		BurstFrames:      cfg.Transport.BurstFrames,
		RefuseLowLatency: cfg.Transport.RefuseLowLatency,
	})

	engine := builder.New(builder.Options{
		Policy:          provider,
		Clients:         stream.Clients{LowLatency: loopback, Buffered: loopback},
		Tracker:         stream.NewRegistry(),
		Metrics:         metrics.New(reg),
		Emitter:         pipeline,
		TransportPolicy: audio.TransportPolicy(cfg.Engine.TransportPolicy),
	})
	return engine, func() { _ = pipeline.Close() }, nil
}

type resolveReport struct {
	StreamID         string `json:"stream_id"`
	Path             string `json:"path"`
	SampleRate       int32  `json:"sample_rate"`
	ChannelCount     int32  `json:"channel_count"`
	Format           string `json:"format"`
	SharingMode      string `json:"sharing_mode"`
	BurstFrames      int32  `json:"burst_frames"`
	BytesSynthesized int64  `json:"bytes_synthesized,omitempty"`
}

func reportFor(h *stream.Handle) resolveReport {
	actual := h.Actual()
	path := string(audio.PathBuffered)
	if h.LowLatencyBacked() {
		path = string(audio.PathLowLatency)
	}
	return resolveReport{
		StreamID:     h.ID(),
		Path:         path,
		SampleRate:   actual.SampleRate,
		ChannelCount: actual.ChannelCount,
		Format:       string(actual.Format),
		SharingMode:  string(actual.SharingMode),
		BurstFrames:  actual.BurstFrames,
	}
}

// runResolve builds one playback stream against the loopback transport and
// prints what was negotiated.
func runResolve(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	engine, cleanup, err := wire(cfg, prometheus.NewRegistry(), nil)
	if err != nil {
		return err
	}
	defer cleanup()

	request := params.StreamConfig{
		Direction:       audio.DirectionOutput,
		PerformanceMode: audio.PerformanceModeLowLatency,
	}
	handle, err := engine.Build(&request)
	if err != nil {
		return err
	}
	defer engine.ReleaseStream(handle)

	return printJSON(reportFor(handle))
}

// runDemo builds a playback stream and pushes synthesized speech through
// its endpoint, exercising the whole acquisition and data handoff path.
func runDemo(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	engine, cleanup, err := wire(cfg, reg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}

	source, err := pollysource.NewSource(pollysource.Config{
		VoiceID:    cfg.Demo.Voice,
		SampleRate: cfg.Demo.SampleRate,
	})
	if err != nil {
		return err
	}

	request := params.StreamConfig{
		Direction:       audio.DirectionOutput,
		SampleRate:      source.SampleRate(),
		ChannelCount:    1,
		Format:          audio.FormatPCMI16,
		PerformanceMode: audio.PerformanceModeLowLatency,
		Usage:           audio.UsageMedia,
		ContentType:     audio.ContentTypeSpeech,
	}
	handle, err := engine.Build(&request)
	if err != nil {
		return err
	}
	defer engine.ReleaseStream(handle)

	writer, ok := handle.Endpoint().(io.Writer)
	if !ok {
		return audio.Errorf(audio.ResultInternal, "endpoint does not accept audio data")
	}
	n, err := source.Render(context.Background(), "Audio gate demo stream is live.", writer)
	if err != nil {
		return err
	}

	report := reportFor(handle)
	report.BytesSynthesized = n
	return printJSON(report)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
