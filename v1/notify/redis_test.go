package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newRedisBus(t *testing.T) (*RedisBus, context.Context) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewRedisBus(client)
	t.Cleanup(func() {
		_ = bus.Close()
		_ = client.Close()
		mr.Close()
	})
	return bus, context.Background()
}

func TestRedisBusPublishSubscribe(t *testing.T) {
	bus, ctx := newRedisBus(t)

	ch, err := bus.Subscribe(ctx, "k")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	// Give the pub/sub subscription time to settle.
	time.Sleep(50 * time.Millisecond)

	if err := bus.Publish(ctx, NewEvent("k", KindLost, "owner-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case ev := <-ch:
		if ev.Kind != KindLost || ev.OwnerID != "owner-1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	m := bus.Metrics()
	if m.Published != 1 {
		t.Fatalf("expected published 1 got %d", m.Published)
	}
}

func TestRedisBusUnsubscribe(t *testing.T) {
	bus, ctx := newRedisBus(t)

	ch, _ := bus.Subscribe(ctx, "k")
	if err := bus.Unsubscribe(ctx, "k", ch); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel not closed on unsubscribe")
	}
}
