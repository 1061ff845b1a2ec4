package notify

import (
	"context"
	"os"
	"testing"
	"time"

	sarama "github.com/IBM/sarama"
	"github.com/google/uuid"
)

func newKafkaBus(t *testing.T) (*KafkaBus, context.Context) {
	t.Helper()
	addr := os.Getenv("LATCH_TEST_KAFKA_ADDR")
	if addr == "" {
		t.Skip("LATCH_TEST_KAFKA_ADDR not set, skipping Kafka integration tests")
	}
	t.Logf("TestKafkaBus: using real Kafka at %s", addr)

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	bus, err := NewKafkaBus([]string{addr}, config)
	if err != nil {
		t.Fatalf("NewKafkaBus: %v", err)
	}
	ctx := context.Background()
	t.Cleanup(func() {
		_ = bus.Close()
	})
	return bus, ctx
}

func TestKafkaBusPublishSubscribe(t *testing.T) {
	bus, ctx := newKafkaBus(t)
	name := "it-" + uuid.NewString()

	ch, err := bus.Subscribe(ctx, name)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	// Wait for the partition consumer to be ready.
	time.Sleep(2 * time.Second)

	if err := bus.Publish(ctx, NewEvent(name, KindAcquired, "owner-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case ev := <-ch:
		if ev.Kind != KindAcquired {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}
