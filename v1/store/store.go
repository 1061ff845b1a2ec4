package store

import (
	"context"
	"time"
)

// ExtendResult reports the outcome of an ExpireIfMatch call.
type ExtendResult int

const (
	// Extended means the expiry was re-applied to the key.
	Extended ExtendResult = iota
	// NoMatch means the key is absent or held by a different value.
	NoMatch
	// NoExpiry means the key matched but carries no expiry to extend.
	NoExpiry
)

// Store abstracts the key-value service the locks coordinate through. Any
// backend implementing these primitives with the documented atomicity can
// host locks; implementations must never emulate atomic operations with
// separate read/write round trips.
type Store interface {
	// SetIfAbsent atomically creates key with value only when it does not
	// exist, applying ttl when positive. Returns true if the key was created.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Get returns the current value of key. The boolean reports existence.
	Get(ctx context.Context, key string) (string, bool, error)

	// DeleteIfMatch atomically deletes key only when its current value equals
	// expect. Returns true if the key was deleted.
	DeleteIfMatch(ctx context.Context, key, expect string) (bool, error)

	// ExpireIfMatch atomically re-applies ttl to key only when its current
	// value equals expect.
	ExpireIfMatch(ctx context.Context, key, expect string, ttl time.Duration) (ExtendResult, error)

	// Signal clears any stale wake tokens on the queue at key and pushes a
	// single fresh one. The token evaporates after ttl so old releases never
	// wake future waiters.
	Signal(ctx context.Context, key, token string, ttl time.Duration) error

	// AwaitSignal blocks until a wake token arrives on the queue at key or
	// timeout elapses. A zero timeout blocks until ctx is done. Returns true
	// when a token was consumed, false on an idle wake.
	AwaitSignal(ctx context.Context, key string, timeout time.Duration) (bool, error)

	// Delete unconditionally removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// Keys lists keys matching a glob-style pattern. Only administrative
	// reset uses it; hot paths never scan.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
