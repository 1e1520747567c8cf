package exporters

import (
	"context"
	"errors"
	"testing"
)

func TestTracingExporter_UnknownName(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), "zipkin")
	if !errors.Is(err, ErrUnknownExporter) {
		t.Fatalf("err = %v, want ErrUnknownExporter", err)
	}
}

func TestTracingExporter_Stdout(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "stdout")
	if err != nil {
		t.Fatalf("NewTracingExporter(stdout) error = %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}
	_ = exp.Shutdown(context.Background())
}

func TestTracingExporter_OTLPRequiresEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	_, err := NewTracingExporter(context.Background(), "otlp")
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Fatalf("err = %v, want ErrEndpointNotConfigured", err)
	}
}

func TestTracingExporter_OTLPWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")

	exp, err := NewTracingExporter(context.Background(), "otlp")
	if err != nil {
		t.Fatalf("NewTracingExporter(otlp) error = %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}
}

func TestTracingExporter_JaegerRequiresEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")

	_, err := NewTracingExporter(context.Background(), "jaeger")
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Fatalf("err = %v, want ErrEndpointNotConfigured", err)
	}
}

func TestTracingExporter_None(t *testing.T) {
	for _, name := range []string{"none", ""} {
		exp, err := NewTracingExporter(context.Background(), name)
		if err != nil {
			t.Fatalf("NewTracingExporter(%q) error = %v", name, err)
		}
		if exp != nil {
			t.Errorf("NewTracingExporter(%q) = %v, want nil", name, exp)
		}
	}
}

func TestMetricsReader_Stdout(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "stdout")
	if err != nil {
		t.Fatalf("NewMetricsReader(stdout) error = %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

func TestMetricsReader_Prometheus(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "prometheus")
	if err != nil {
		t.Fatalf("NewMetricsReader(prometheus) error = %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

func TestMetricsReader_OTLPRequiresEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	_, err := NewMetricsReader(context.Background(), "otlp")
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Fatalf("err = %v, want ErrEndpointNotConfigured", err)
	}
}

func TestMetricsReader_None(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "none")
	if err != nil {
		t.Fatalf("NewMetricsReader(none) error = %v", err)
	}
	if reader != nil {
		t.Errorf("NewMetricsReader(none) = %v, want nil", reader)
	}
}

func TestMetricsReader_UnknownName(t *testing.T) {
	_, err := NewMetricsReader(context.Background(), "badvalue")
	if !errors.Is(err, ErrUnknownExporter) {
		t.Fatalf("err = %v, want ErrUnknownExporter", err)
	}
}
