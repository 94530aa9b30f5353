package observability

import (
	"context"
	"testing"
)

func TestTracingConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("SIM_TRACING_ENABLED", "")
	t.Setenv("SIM_TRACING_EXPORTER", "")
	t.Setenv("SIM_TRACING_SERVICE_NAME", "")
	t.Setenv("SIM_TRACING_SAMPLE_RATIO", "")
	t.Setenv("SIM_OTLP_ENDPOINT", "")

	cfg := TracingConfigFromEnv()
	if cfg.Enabled {
		t.Fatal("tracing enabled by default")
	}
	if cfg.Exporter != "stdout" {
		t.Fatalf("default exporter %q", cfg.Exporter)
	}
	if cfg.ServiceName != "granular-simulator" {
		t.Fatalf("default service name %q", cfg.ServiceName)
	}
	if cfg.SampleRatio != 1.0 {
		t.Fatalf("default sample ratio %g", cfg.SampleRatio)
	}
}

func TestTracingConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SIM_TRACING_ENABLED", "TRUE")
	t.Setenv("SIM_TRACING_EXPORTER", "OTLP")
	t.Setenv("SIM_TRACING_SERVICE_NAME", "dem-bench")
	t.Setenv("SIM_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("SIM_OTLP_ENDPOINT", "collector:4317")

	cfg := TracingConfigFromEnv()
	if !cfg.Enabled {
		t.Fatal("enabled flag not parsed")
	}
	if cfg.Exporter != "otlp" {
		t.Fatalf("exporter %q", cfg.Exporter)
	}
	if cfg.ServiceName != "dem-bench" {
		t.Fatalf("service name %q", cfg.ServiceName)
	}
	if cfg.SampleRatio != 0.25 {
		t.Fatalf("sample ratio %g", cfg.SampleRatio)
	}
	if cfg.Endpoint != "collector:4317" {
		t.Fatalf("endpoint %q", cfg.Endpoint)
	}
}

func TestTracingConfigFromEnvBadRatio(t *testing.T) {
	t.Setenv("SIM_TRACING_SAMPLE_RATIO", "7")
	if cfg := TracingConfigFromEnv(); cfg.SampleRatio != 1.0 {
		t.Fatalf("out-of-range ratio accepted: %g", cfg.SampleRatio)
	}
	t.Setenv("SIM_TRACING_SAMPLE_RATIO", "abc")
	if cfg := TracingConfigFromEnv(); cfg.SampleRatio != 1.0 {
		t.Fatalf("garbage ratio accepted: %g", cfg.SampleRatio)
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if shutdown == nil {
		t.Fatal("nil shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}

	// Shutdown helper tolerates nil and noop functions.
	ShutdownWithTimeout(context.Background(), nil, nil)
	ShutdownWithTimeout(context.Background(), shutdown, nil)
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{
		Enabled:  true,
		Exporter: "jaeger-thrift",
	}, nil)
	if err == nil {
		t.Fatal("unknown exporter accepted")
	}
}
