package notify

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	sarama "github.com/IBM/sarama"
)

const kafkaTopicPrefix = "latch-events-"

type kafkaSubscription struct {
	pc    sarama.PartitionConsumer
	chans []chan Event
}

// KafkaBus implements Bus using a Kafka backend. Each lock name maps to its
// own topic so consumers only pay for the locks they watch.
type KafkaBus struct {
	producer  sarama.SyncProducer
	consumer  sarama.Consumer
	mu        sync.Mutex
	subs      map[string]*kafkaSubscription
	published uint64
	delivered uint64
}

// NewKafkaBus creates a new KafkaBus connecting to the given brokers.
func NewKafkaBus(brokers []string, cfg *sarama.Config) (*KafkaBus, error) {
	if !cfg.Producer.Return.Successes {
		cfg.Producer.Return.Successes = true
	}
	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = producer.Close()
		_ = client.Close()
		return nil, err
	}
	return &KafkaBus{
		producer: producer,
		consumer: consumer,
		subs:     make(map[string]*kafkaSubscription),
	}, nil
}

// Publish implements Bus.Publish.
func (b *KafkaBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: kafkaTopicPrefix + ev.Name,
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := b.producer.SendMessage(msg); err != nil {
		return err
	}
	atomic.AddUint64(&b.published, 1)
	return nil
}

// Subscribe implements Bus.Subscribe.
func (b *KafkaBus) Subscribe(ctx context.Context, name string) (chan Event, error) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	sub := b.subs[name]
	if sub == nil {
		pc, err := b.consumer.ConsumePartition(kafkaTopicPrefix+name, 0, sarama.OffsetNewest)
		if err != nil {
			b.mu.Unlock()
			return nil, err
		}
		sub = &kafkaSubscription{pc: pc}
		b.subs[name] = sub
		go b.dispatch(sub, name)
	}
	sub.chans = append(sub.chans, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = b.Unsubscribe(context.Background(), name, ch)
	}()
	return ch, nil
}

func (b *KafkaBus) dispatch(sub *kafkaSubscription, name string) {
	for msg := range sub.pc.Messages() {
		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			continue
		}
		b.mu.Lock()
		cur := b.subs[name]
		if cur == nil {
			b.mu.Unlock()
			return
		}
		chans := append([]chan Event(nil), cur.chans...)
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
func (b *KafkaBus) Unsubscribe(ctx context.Context, name string, ch chan Event) error {
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
		return sub.pc.Close()
	}
	b.mu.Unlock()
	return nil
}

// Close stops the producer, the consumer and every subscription.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	for name, sub := range b.subs {
		for _, ch := range sub.chans {
			close(ch)
		}
		_ = sub.pc.Close()
		delete(b.subs, name)
	}
	b.mu.Unlock()
	if err := b.producer.Close(); err != nil {
		_ = b.consumer.Close()
		return err
	}
	return b.consumer.Close()
}

// Metrics returns the published and delivered counts.
func (b *KafkaBus) Metrics() Metrics {
	return Metrics{
		Published: atomic.LoadUint64(&b.published),
		Delivered: atomic.LoadUint64(&b.delivered),
	}
}
