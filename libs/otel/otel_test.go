package otelx

import (
	"context"
	"errors"
	"testing"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_SAMPLING_PERCENT", "")
	cfg := ConfigFromEnv("portal-service")
	if cfg.Enabled {
		t.Fatal("expected tracing disabled by default")
	}
	if cfg.OTLPEndpoint != "localhost:4317" {
		t.Fatalf("unexpected endpoint %q", cfg.OTLPEndpoint)
	}
	if cfg.SampleRatio != 1 {
		t.Fatalf("unexpected ratio %v", cfg.SampleRatio)
	}
}

func TestConfigFromEnvSampling(t *testing.T) {
	t.Setenv("OTEL_SAMPLING_PERCENT", "25")
	if got := ConfigFromEnv("x").SampleRatio; got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}

func TestConfigFromEnvSamplingOutOfRange(t *testing.T) {
	for _, v := range []string{"-5", "150", "half"} {
		t.Setenv("OTEL_SAMPLING_PERCENT", v)
		if got := ConfigFromEnv("x").SampleRatio; got != 1 {
			t.Fatalf("OTEL_SAMPLING_PERCENT=%s: expected ratio 1, got %v", v, got)
		}
	}
}

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, ServiceName: "portal-service"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	ctx, span := StartSpan(context.Background(), "page.load")
	if ctx == nil {
		t.Fatal("expected context")
	}
	End(span, errors.New("backend down"))
}
