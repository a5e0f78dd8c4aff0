package telemetry

import (
	"context"
	"testing"
)

func TestInit_NilConfig(t *testing.T) {
	tel, err := Init(context.Background(), nil)
	if err != nil {
		t.Fatalf("Init(nil) failed: %v", err)
	}
	if tel == nil || tel.tracer == nil {
		t.Fatal("Init(nil) must still yield a usable tracer")
	}

	// The no-op tracer still hands back a span the caller can end.
	ctx, span := StartSpan(context.Background(), "test.span")
	if ctx == nil || span == nil {
		t.Fatal("StartSpan on the no-op tracer returned nil")
	}
	span.End()
}

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{Enabled: false, ServiceName: "rh-console"})
	if err != nil {
		t.Fatalf("Init(disabled) failed: %v", err)
	}
	if tel.provider != nil {
		t.Error("disabled telemetry must not build a tracer provider")
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown of disabled telemetry failed: %v", err)
	}
}
