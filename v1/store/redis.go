package store

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const defaultRedisOpTimeout = 5 * time.Second

var deleteIfMatchScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

var expireIfMatchScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
    return 1
elseif redis.call("TTL", KEYS[1]) < 0 then
    return 2
else
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
    return 0
end
`)

var signalScript = redis.NewScript(`
redis.call("DEL", KEYS[1])
redis.call("LPUSH", KEYS[1], ARGV[1])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 1
`)

// Redis implements Store on a Redis backend. The conditional primitives run
// as server-side scripts so their check-and-mutate step is indivisible.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*redisOptions)

type redisOptions struct {
	timeout time.Duration
}

// WithOpTimeout bounds every non-blocking Redis call. Blocking pops carry
// their own deadline and are not affected.
func WithOpTimeout(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.timeout = d
	}
}

// NewRedis returns a Redis store using the provided client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	o := redisOptions{timeout: defaultRedisOpTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &Redis{client: client, timeout: o.timeout}
}

// SetIfAbsent implements Store.SetIfAbsent.
func (s *Redis) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.SetNX(cctx, key, value, ttl).Result()
}

// Get implements Store.Get.
func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	v, err := s.client.Get(cctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// DeleteIfMatch implements Store.DeleteIfMatch.
func (s *Redis) DeleteIfMatch(ctx context.Context, key, expect string) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := deleteIfMatchScript.Run(cctx, s.client, []string{key}, expect).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ExpireIfMatch implements Store.ExpireIfMatch.
func (s *Redis) ExpireIfMatch(ctx context.Context, key, expect string, ttl time.Duration) (ExtendResult, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := expireIfMatchScript.Run(cctx, s.client, []string{key}, expect, ttl.Milliseconds()).Int()
	if err != nil {
		return NoMatch, err
	}
	switch n {
	case 0:
		return Extended, nil
	case 2:
		return NoExpiry, nil
	default:
		return NoMatch, nil
	}
}

// Signal implements Store.Signal. The drain, push and expiry happen in one
// script so a waiter can never observe two tokens from one release.
func (s *Redis) Signal(ctx context.Context, key, token string, ttl time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return signalScript.Run(cctx, s.client, []string{key}, token, ttl.Milliseconds()).Err()
}

// AwaitSignal implements Store.AwaitSignal via BLPOP.
func (s *Redis) AwaitSignal(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	_, err := s.client.BLPop(ctx, timeout, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete implements Store.Delete.
func (s *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(cctx, keys...).Err()
}

// Keys implements Store.Keys using SCAN to iterate without blocking the server.
func (s *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var cursor uint64
	var keys []string
	for {
		batch, next, err := s.client.Scan(cctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
