package lock

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mirkobrombin/go-latch/v1/store"
)

func TestAcquireReleaseSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	st := store.NewMemory()
	ctx := context.Background()
	l, _ := New(st, "traced")

	if ok, _ := l.TryAcquire(ctx); !ok {
		t.Fatal("acquire failed")
	}
	if err := l.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}

	spans := exporter.GetSpans()
	names := make(map[string]bool, len(spans))
	for _, s := range spans {
		names[s.Name] = true
	}
	if !names["lock.TryAcquire"] || !names["lock.Release"] {
		t.Fatalf("missing spans, got %v", names)
	}
}
