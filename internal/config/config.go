// Package config loads the audiogate service configuration from YAML.
// Every section carries its own Validate so a bad file is rejected with a
// section-qualified message before anything is wired up.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lynxaudio/audiogate/api/audio"
)

// Config is the complete service configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Transport TransportConfig `yaml:"transport"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Demo      DemoConfig      `yaml:"demo"`
}

// EngineConfig controls policy resolution for the acquisition engine.
type EngineConfig struct {
	// TransportPolicy, when set, overrides the policy file answer for the
	// normal path. Empty defers to the policy file.
	TransportPolicy string `yaml:"transport_policy"`
	PolicyFile      string `yaml:"policy_file"`
}

// TransportConfig tunes the loopback transport backing both paths.
type TransportConfig struct {
	PreferredRate    int32 `yaml:"preferred_rate"`
	BurstFrames      int32 `yaml:"burst_frames"`
	RefuseLowLatency bool  `yaml:"refuse_low_latency"`
}

// TelemetryConfig controls the diagnostic event pipeline.
type TelemetryConfig struct {
	Enabled         bool   `yaml:"enabled"`
	OTLPEndpoint    string `yaml:"otlp_endpoint"`
	ServiceName     string `yaml:"service_name"`
	QueueCapacity   int    `yaml:"queue_capacity"`
	ExportTimeoutMS int    `yaml:"export_timeout_ms"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// DemoConfig configures the speech demo source.
type DemoConfig struct {
	Voice      string `yaml:"voice"`
	SampleRate int32  `yaml:"sample_rate"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Transport: TransportConfig{
			PreferredRate: 48000,
			BurstFrames:   192,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     "audiogate",
			QueueCapacity:   128,
			ExportTimeoutMS: 200,
		},
		Metrics: MetricsConfig{
			Listen: ":9102",
		},
		Demo: DemoConfig{
			Voice:      "Joanna",
			SampleRate: 16000,
		},
	}
}

// Load reads, parses, and validates the configuration file at path.
// Omitted fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}
	if err := c.Demo.Validate(); err != nil {
		return fmt.Errorf("demo config: %w", err)
	}
	return nil
}

// Validate validates the engine section.
func (e *EngineConfig) Validate() error {
	if err := audio.TransportPolicy(e.TransportPolicy).Validate(); err != nil {
		return err
	}
	return nil
}

// Validate validates the transport section.
func (t *TransportConfig) Validate() error {
	if t.PreferredRate < audio.SampleRateHzMin || t.PreferredRate > audio.SampleRateHzMax {
		return fmt.Errorf("preferred_rate must be between %d and %d, got %d",
			audio.SampleRateHzMin, audio.SampleRateHzMax, t.PreferredRate)
	}
	if t.BurstFrames < 1 {
		return fmt.Errorf("burst_frames must be at least 1, got %d", t.BurstFrames)
	}
	return nil
}

// Validate validates the telemetry section.
func (t *TelemetryConfig) Validate() error {
	if t.Enabled && t.OTLPEndpoint == "" {
		return fmt.Errorf("otlp_endpoint cannot be empty when telemetry is enabled")
	}
	if t.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be at least 1, got %d", t.QueueCapacity)
	}
	if t.ExportTimeoutMS < 1 {
		return fmt.Errorf("export_timeout_ms must be at least 1, got %d", t.ExportTimeoutMS)
	}
	return nil
}

// Validate validates the metrics section.
func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.Listen == "" {
		return fmt.Errorf("listen cannot be empty when metrics are enabled")
	}
	return nil
}

// Validate validates the demo section.
func (d *DemoConfig) Validate() error {
	if d.Voice == "" {
		return fmt.Errorf("voice cannot be empty")
	}
	if d.SampleRate < audio.SampleRateHzMin || d.SampleRate > audio.SampleRateHzMax {
		return fmt.Errorf("sample_rate must be between %d and %d, got %d",
			audio.SampleRateHzMin, audio.SampleRateHzMax, d.SampleRate)
	}
	return nil
}

// ExportTimeout returns the telemetry export timeout as a time.Duration.
func (t *TelemetryConfig) ExportTimeout() time.Duration {
	return time.Duration(t.ExportTimeoutMS) * time.Millisecond
}
