package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/hashicorp/go-uuid"
)

// Kind classifies a lock lifecycle event.
type Kind string

const (
	KindAcquired Kind = "acquired"
	KindReleased Kind = "released"
	KindRenewed  Kind = "renewed"
	KindLost     Kind = "lost"
	KindReset    Kind = "reset"
)

// Event describes a single lifecycle transition of a named lock.
type Event struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Kind    Kind      `json:"kind"`
	OwnerID string    `json:"owner_id,omitempty"`
	At      time.Time `json:"at"`
}

// NewEvent builds an Event with a fresh id and timestamp.
func NewEvent(name string, kind Kind, ownerID string) Event {
	id, err := uuid.GenerateUUID()
	if err != nil {
		id = ""
	}
	return Event{ID: id, Name: name, Kind: kind, OwnerID: ownerID, At: time.Now()}
}

// Bus propagates lock lifecycle events to observers. Locks publish with
// fire-and-forget semantics; a slow or broken bus never blocks or fails a
// lock operation.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, name string) (chan Event, error)
	Unsubscribe(ctx context.Context, name string, ch chan Event) error
}

// InMemoryBus is a local implementation of Bus, the default for locks that
// were not given one and a convenient test double.
type InMemoryBus struct {
	mu        sync.Mutex
	subs      map[string][]chan Event
	published uint64
	delivered uint64
}

// NewInMemoryBus returns a new InMemoryBus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{subs: make(map[string][]chan Event)}
}

// Publish implements Bus.Publish.
func (b *InMemoryBus) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	chans := append([]chan Event(nil), b.subs[ev.Name]...)
	b.mu.Unlock()
	atomic.AddUint64(&b.published, 1)
	for _, ch := range chans {
		select {
		case ch <- ev:
			atomic.AddUint64(&b.delivered, 1)
		default:
		}
	}
	return nil
}

// Subscribe implements Bus.Subscribe.
func (b *InMemoryBus) Subscribe(ctx context.Context, name string) (chan Event, error) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[name] = append(b.subs[name], ch)
	b.mu.Unlock()
	go func() {
		<-ctx.Done()
		_ = b.Unsubscribe(context.Background(), name, ch)
	}()
	return ch, nil
}

// Unsubscribe implements Bus.Unsubscribe.
func (b *InMemoryBus) Unsubscribe(ctx context.Context, name string, ch chan Event) error {
	b.mu.Lock()
	subs := b.subs[name]
	for i, c := range subs {
		if c == ch {
			subs[i] = subs[len(subs)-1]
			subs = subs[:len(subs)-1]
			b.subs[name] = subs
			close(c)
			break
		}
	}
	if len(subs) == 0 {
		delete(b.subs, name)
	}
	b.mu.Unlock()
	return nil
}

// Metrics reports publish and delivery counts of a bus.
type Metrics struct {
	Published uint64
	Delivered uint64
}

// Metrics returns the published and delivered counts.
func (b *InMemoryBus) Metrics() Metrics {
	return Metrics{
		Published: atomic.LoadUint64(&b.published),
		Delivered: atomic.LoadUint64(&b.delivered),
	}
}
