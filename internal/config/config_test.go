package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audiogate.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
engine:
  transport_policy: never
  policy_file: /etc/audiogate/policy.json
transport:
  refuse_low_latency: true
telemetry:
  enabled: true
  otlp_endpoint: http://collector:4318
  queue_capacity: 256
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.TransportPolicy != "never" {
		t.Fatalf("transport_policy = %q", cfg.Engine.TransportPolicy)
	}
	if !cfg.Transport.RefuseLowLatency {
		t.Fatalf("refuse_low_latency must be set")
	}
	// Unset fields keep their defaults.
	if cfg.Transport.PreferredRate != 48000 {
		t.Fatalf("preferred_rate default lost: %d", cfg.Transport.PreferredRate)
	}
	if cfg.Telemetry.QueueCapacity != 256 {
		t.Fatalf("queue_capacity = %d", cfg.Telemetry.QueueCapacity)
	}
	if got := cfg.Telemetry.ExportTimeout(); got != 200*time.Millisecond {
		t.Fatalf("export timeout default lost: %v", got)
	}
	if cfg.Demo.Voice != "Joanna" {
		t.Fatalf("demo voice default lost: %q", cfg.Demo.Voice)
	}
}

func TestLoadRejectsBadSections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bad policy override",
			body: "engine:\n  transport_policy: sometimes\n",
			want: "engine config",
		},
		{
			name: "rate out of range",
			body: "transport:\n  preferred_rate: 2000000\n",
			want: "transport config",
		},
		{
			name: "telemetry enabled without endpoint",
			body: "telemetry:\n  enabled: true\n",
			want: "telemetry config",
		},
		{
			name: "metrics enabled without listen",
			body: "metrics:\n  enabled: true\n  listen: \"\"\n",
			want: "metrics config",
		},
		{
			name: "empty demo voice",
			body: "demo:\n  voice: \"\"\n",
			want: "demo config",
		},
		{
			name: "demo rate out of range",
			body: "demo:\n  sample_rate: 4000\n",
			want: "demo config",
		},
		{
			name: "not yaml",
			body: "engine: [",
			want: "parse config file",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q must mention %q", err, tc.want)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file must fail")
	}
}
