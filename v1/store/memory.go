package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	value string
	timer *time.Timer
}

type memQueue struct {
	tokens []string
	notify chan struct{}
	timer  *time.Timer
}

// Memory implements Store with local maps, expiry timers and in-process wake
// channels. It honors the same semantics as the Redis adapter and backs the
// test suites and single-process deployments.
type Memory struct {
	mu     sync.Mutex
	items  map[string]*memEntry
	queues map[string]*memQueue
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:  make(map[string]*memEntry),
		queues: make(map[string]*memQueue),
	}
}

// SetIfAbsent implements Store.SetIfAbsent.
func (s *Memory) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false, nil
	}
	e := &memEntry{value: value}
	if ttl > 0 {
		e.timer = time.AfterFunc(ttl, func() {
			s.mu.Lock()
			if cur, ok := s.items[key]; ok && cur == e {
				delete(s.items, key)
			}
			s.mu.Unlock()
		})
	}
	s.items[key] = e
	return true, nil
}

// Get implements Store.Get.
func (s *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

// DeleteIfMatch implements Store.DeleteIfMatch.
func (s *Memory) DeleteIfMatch(ctx context.Context, key, expect string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok || e.value != expect {
		return false, nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(s.items, key)
	return true, nil
}

// ExpireIfMatch implements Store.ExpireIfMatch.
func (s *Memory) ExpireIfMatch(ctx context.Context, key, expect string, ttl time.Duration) (ExtendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok || e.value != expect {
		return NoMatch, nil
	}
	if e.timer == nil {
		return NoExpiry, nil
	}
	e.timer.Stop()
	e.timer = time.AfterFunc(ttl, func() {
		s.mu.Lock()
		if cur, ok := s.items[key]; ok && cur == e {
			delete(s.items, key)
		}
		s.mu.Unlock()
	})
	return Extended, nil
}

// Signal implements Store.Signal. Stale tokens are dropped, the fresh one is
// queued and every parked waiter is woken to race for it.
func (s *Memory) Signal(ctx context.Context, key, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue(key)
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.tokens = []string{token}
	close(q.notify)
	q.notify = make(chan struct{})
	if ttl > 0 {
		q.timer = time.AfterFunc(ttl, func() {
			s.mu.Lock()
			if cur, ok := s.queues[key]; ok && cur == q {
				q.tokens = nil
			}
			s.mu.Unlock()
		})
	}
	return nil
}

// AwaitSignal implements Store.AwaitSignal.
func (s *Memory) AwaitSignal(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	var idle <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		idle = t.C
	}
	for {
		s.mu.Lock()
		q := s.queue(key)
		if len(q.tokens) > 0 {
			q.tokens = q.tokens[1:]
			s.mu.Unlock()
			return true, nil
		}
		wake := q.notify
		s.mu.Unlock()

		select {
		case <-wake:
		case <-idle:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// Delete implements Store.Delete. Deleting a signal key clears its queue
// without waking anyone.
func (s *Memory) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if e, ok := s.items[key]; ok {
			if e.timer != nil {
				e.timer.Stop()
			}
			delete(s.items, key)
		}
		if q, ok := s.queues[key]; ok {
			if q.timer != nil {
				q.timer.Stop()
				q.timer = nil
			}
			q.tokens = nil
		}
	}
	return nil
}

// Keys implements Store.Keys with glob matching. Queues only count while
// they hold an undelivered token, mirroring how a list key exists in Redis.
func (s *Memory) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.items {
		if matchKey(pattern, k) {
			keys = append(keys, k)
		}
	}
	for k, q := range s.queues {
		if len(q.tokens) == 0 {
			continue
		}
		if matchKey(pattern, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// matchKey matches a key against a glob pattern the way the server-side SCAN
// glob does, where every byte of the key is ordinary. Only trailing-star
// patterns and literals occur here.
func matchKey(pattern, key string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}

// queue returns the wake queue for key, creating it on first use.
// Callers must hold s.mu.
func (s *Memory) queue(key string) *memQueue {
	q, ok := s.queues[key]
	if !ok {
		q = &memQueue{notify: make(chan struct{})}
		s.queues[key] = q
	}
	return q
}
