package lock_test

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mirkobrombin/go-latch/v1/lock"
	"github.com/mirkobrombin/go-latch/v1/presets"
)

func Example() {
	st, bus := presets.NewStandalone()
	ctx := context.Background()

	l, err := lock.New(st, "reports", lock.WithBus(bus))
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := l.Acquire(ctx); err != nil {
		fmt.Println(err)
		return
	}
	// ... protected work ...
	if err := l.Release(ctx); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("done")
	// Output: done
}

// ExampleLock_AcquireTimeout shows the try-and-fall-back pattern: a timed
// acquisition that gives up without an error when the budget runs out.
func ExampleLock_AcquireTimeout() {
	st, _ := presets.NewStandalone()
	ctx := context.Background()

	holder, _ := lock.New(st, "nightly-job")
	_ = holder.Acquire(ctx)

	rival, _ := lock.New(st, "nightly-job")
	ok, err := rival.AcquireTimeout(ctx, 50*time.Millisecond)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(ok)
	// Output: false
}

// ExampleNew_tracing wires the otel SDK so every acquisition and release
// shows up as a span on stdout.
func ExampleNew_tracing() {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		fmt.Println(err)
		return
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)

	st, _ := presets.NewStandalone()
	l, _ := lock.New(st, "traced")
	_, _ = l.TryAcquire(context.Background())
	_ = l.Release(context.Background())
}
