package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// OTLPHTTPSinkConfig configures OTLP-friendly HTTP export.
type OTLPHTTPSinkConfig struct {
	Endpoint    string
	ServiceName string
	Client      *http.Client
}

// OTLPHTTPSink posts events to kind-specific OTLP HTTP routes.
type OTLPHTTPSink struct {
	baseURL     *url.URL
	serviceName string
	client      *http.Client
}

// NewOTLPHTTPSink validates the endpoint and builds a sink.
func NewOTLPHTTPSink(cfg OTLPHTTPSinkConfig) (*OTLPHTTPSink, error) {
	raw := strings.TrimSpace(cfg.Endpoint)
	if raw == "" {
		return nil, fmt.Errorf("otlp endpoint is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse otlp endpoint: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("otlp endpoint must include scheme and host")
	}
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "audiogate"
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &OTLPHTTPSink{baseURL: parsed, serviceName: service, client: client}, nil
}

type envelope struct {
	ServiceName string `json:"service_name"`
	Event       Event  `json:"event"`
}

// Export posts one event.
func (s *OTLPHTTPSink) Export(ctx context.Context, event Event) error {
	payload, err := json.Marshal(envelope{ServiceName: s.serviceName, Event: event})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	u := *s.baseURL
	route := "/v1/logs"
	if event.Kind == KindMetric {
		route = "/v1/metrics"
	}
	u.Path = path.Join(strings.TrimRight(u.Path, "/"), route)
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("export request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("export status %d", resp.StatusCode)
	}
	return nil
}
