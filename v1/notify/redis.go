package notify

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	redis "github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "latch:events:"

type redisSubscription struct {
	pubsub *redis.PubSub
	chans  []chan Event
}

// RedisBus implements Bus over Redis pub/sub. Events are JSON-encoded on a
// per-lock channel so observers in other processes see the same stream.
type RedisBus struct {
	client    *redis.Client
	mu        sync.Mutex
	subs      map[string]*redisSubscription
	published uint64
	delivered uint64
}

// NewRedisBus returns a new RedisBus using the provided Redis client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client, subs: make(map[string]*redisSubscription)}
}

// Publish implements Bus.Publish.
func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, redisChannelPrefix+ev.Name, payload).Err(); err != nil {
		return err
	}
	atomic.AddUint64(&b.published, 1)
	return nil
}

// Subscribe implements Bus.Subscribe.
func (b *RedisBus) Subscribe(ctx context.Context, name string) (chan Event, error) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	sub := b.subs[name]
	if sub == nil {
		pubsub := b.client.Subscribe(context.Background(), redisChannelPrefix+name)
		sub = &redisSubscription{pubsub: pubsub}
		b.subs[name] = sub
		go b.dispatch(name, pubsub)
	}
	sub.chans = append(sub.chans, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = b.Unsubscribe(context.Background(), name, ch)
	}()
	return ch, nil
}

func (b *RedisBus) dispatch(name string, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			continue
		}
		b.mu.Lock()
		sub := b.subs[name]
		if sub == nil {
			b.mu.Unlock()
			return
		}
		chans := append([]chan Event(nil), sub.chans...)
		b.mu.Unlock()
		for _, ch := range chans {
			select {
			case ch <- ev:
				atomic.AddUint64(&b.delivered, 1)
			default:
			}
		}
	}
}

// Unsubscribe implements Bus.Unsubscribe.
func (b *RedisBus) Unsubscribe(ctx context.Context, name string, ch chan Event) error {
	b.mu.Lock()
	sub := b.subs[name]
	if sub == nil {
		b.mu.Unlock()
		return nil
	}
	for i, c := range sub.chans {
		if c == ch {
			sub.chans[i] = sub.chans[len(sub.chans)-1]
			sub.chans = sub.chans[:len(sub.chans)-1]
			close(c)
			break
		}
	}
	if len(sub.chans) == 0 {
		delete(b.subs, name)
		b.mu.Unlock()
		return sub.pubsub.Close()
	}
	b.mu.Unlock()
	return nil
}

// Close stops every subscription.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for name, sub := range b.subs {
		for _, ch := range sub.chans {
			close(ch)
		}
		if cerr := sub.pubsub.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(b.subs, name)
	}
	return err
}

// Metrics returns the published and delivered counts.
func (b *RedisBus) Metrics() Metrics {
	return Metrics{
		Published: atomic.LoadUint64(&b.published),
		Delivered: atomic.LoadUint64(&b.delivered),
	}
}
