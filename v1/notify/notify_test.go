package notify

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryBusPublishSubscribe(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	ch, err := bus.Subscribe(ctx, "k")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	ev := NewEvent("k", KindAcquired, "owner-1")
	if ev.ID == "" {
		t.Fatal("expected event id")
	}
	if err := bus.Publish(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case got := <-ch:
		if got.Kind != KindAcquired || got.Name != "k" || got.OwnerID != "owner-1" {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	m := bus.Metrics()
	if m.Published != 1 || m.Delivered != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestInMemoryBusOtherNameNotDelivered(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	ch, _ := bus.Subscribe(ctx, "k")
	_ = bus.Publish(ctx, NewEvent("other", KindReleased, ""))
	select {
	case ev := <-ch:
		t.Fatalf("event for wrong name delivered: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInMemoryBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	ch, _ := bus.Subscribe(ctx, "k")
	if err := bus.Unsubscribe(ctx, "k", ch); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel not closed on unsubscribe")
	}
}

func TestInMemoryBusContextBasedUnsubscribe(t *testing.T) {
	bus := NewInMemoryBus()
	subCtx, cancel := context.WithCancel(context.Background())

	ch, _ := bus.Subscribe(subCtx, "k")
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after context cancellation")
		}
	}
}
