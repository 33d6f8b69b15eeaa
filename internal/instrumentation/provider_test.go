package instrumentation

import (
	"context"
	"testing"
	"time"
)

func testProviderConfig(metricsExporter, tracingExporter string) Config {
	return Config{
		ServiceName:     "inboxflow-test",
		ServiceVersion:  "0.0.1",
		Enabled:         true,
		MetricsExporter: metricsExporter,
		TracingExporter: tracingExporter,
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName: "inboxflow-test",
		Enabled:     false,
	})
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}

	if provider.Enabled() {
		t.Error("provider should report disabled")
	}
	if provider.Metrics() == nil {
		t.Error("disabled provider should still return a no-op metrics recorder")
	}
	if provider.Tracer("test") == nil {
		t.Error("disabled provider should return a no-op tracer")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}

func TestNewProvider_Prometheus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, testProviderConfig(ExporterPrometheus, ExporterNone))
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("provider should be enabled")
	}
	if provider.Metrics() == nil {
		t.Error("Metrics() should not be nil")
	}
	if provider.PrometheusHandler() == nil {
		t.Error("PrometheusHandler() should not be nil with the prometheus exporter")
	}
	if provider.Tracer("engine") == nil {
		t.Error("Tracer() should not be nil")
	}
}

func TestNewProvider_StdoutHasNoPrometheusHandler(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, testProviderConfig(ExporterStdout, ExporterStdout))
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if provider.PrometheusHandler() != nil {
		t.Error("PrometheusHandler() should be nil without the prometheus exporter")
	}
}

func TestNewProvider_BadExporters(t *testing.T) {
	tests := []struct {
		name    string
		metrics string
		tracing string
	}{
		{name: "unknown metrics exporter", metrics: "graphite", tracing: ExporterNone},
		{name: "unknown tracing exporter", metrics: ExporterPrometheus, tracing: "jaeger"},
		{name: "otlp tracing without endpoint", metrics: ExporterPrometheus, tracing: ExporterOTLP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if _, err := NewProvider(ctx, testProviderConfig(tt.metrics, tt.tracing)); err == nil {
				t.Error("NewProvider() should fail")
			}
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, testProviderConfig(ExporterPrometheus, ExporterNone))
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}
