package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mirkobrombin/go-latch/v1/metrics"
	"github.com/mirkobrombin/go-latch/v1/notify"
	"github.com/mirkobrombin/go-latch/v1/store"
)

const (
	holderPrefix = "lock:"
	signalPrefix = "lock-signal:"

	// signalTTL bounds how long an unconsumed wake token survives, so a
	// release with no waiters cannot wake an acquirer of a later cycle.
	signalTTL = time.Second

	// idleWake bounds how long a waiter with neither expiry nor deadline
	// stays parked before re-checking the holder key. It guards against a
	// wake signal lost at a process boundary; it is not a polling interval.
	idleWake = 30 * time.Second
)

var tracer = otel.Tracer("github.com/mirkobrombin/go-latch/v1/lock")

// Lock is a handle on a named distributed lock. A handle is bound to one
// owner id; handles sharing an owner id represent the same logical holder
// across processes. Handles are safe for concurrent use.
type Lock struct {
	store     store.Store
	bus       notify.Bus
	name      string
	holderKey string
	signalKey string
	ownerID   string
	expiry    time.Duration
	autoRenew bool

	mu    sync.Mutex
	held  bool
	renew *renewer
}

// Option configures a Lock.
type Option func(*config)

type config struct {
	ownerID   string
	expiry    time.Duration
	autoRenew bool
	bus       notify.Bus
}

// WithOwnerID fixes the lock's owner id instead of generating a random one.
// Processes supplying the same id are recognized as the same logical holder.
func WithOwnerID(id string) Option {
	return func(c *config) {
		c.ownerID = id
	}
}

// WithExpiry makes the holder key expire after d unless renewed, bounding
// the damage of a crashed holder.
func WithExpiry(d time.Duration) Option {
	return func(c *config) {
		c.expiry = d
	}
}

// WithAutoRenewal starts a background scheduler on acquisition that keeps
// extending the expiry while the lock is held. Requires WithExpiry.
func WithAutoRenewal() Option {
	return func(c *config) {
		c.autoRenew = true
	}
}

// WithBus publishes lifecycle events on the given bus.
func WithBus(b notify.Bus) Option {
	return func(c *config) {
		c.bus = b
	}
}

// New creates a handle on the lock called name. Configuration is validated
// here, before any store contact.
func New(st store.Store, name string, opts ...Option) (*Lock, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.expiry < 0 {
		return nil, ErrInvalidExpiry
	}
	if c.autoRenew && c.expiry == 0 {
		return nil, ErrNotExpirable
	}
	if c.ownerID == "" {
		c.ownerID = uuid.NewString()
	}
	if c.bus == nil {
		c.bus = notify.NewInMemoryBus()
	}
	return &Lock{
		store:     st,
		bus:       c.bus,
		name:      name,
		holderKey: holderPrefix + name,
		signalKey: signalPrefix + name,
		ownerID:   c.ownerID,
		expiry:    c.expiry,
		autoRenew: c.autoRenew,
	}, nil
}

// ID returns the handle's owner id.
func (l *Lock) ID() string {
	return l.ownerID
}

// Name returns the lock name.
func (l *Lock) Name() string {
	return l.name
}

// IsHeld reports whether this handle performed the most recent successful
// acquisition. It says nothing about other processes holding the name.
func (l *Lock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Owner returns the owner id currently recorded in the store for this lock.
func (l *Lock) Owner(ctx context.Context) (string, bool, error) {
	return l.store.Get(ctx, l.holderKey)
}

// Locked reports whether any owner currently holds the lock in the store.
func (l *Lock) Locked(ctx context.Context) (bool, error) {
	_, ok, err := l.store.Get(ctx, l.holderKey)
	return ok, err
}

// TryAcquire attempts to obtain the lock without waiting. It returns false
// when another owner holds it, touching nothing else in the store.
func (l *Lock) TryAcquire(ctx context.Context) (bool, error) {
	ctx, span := l.startSpan(ctx, "lock.TryAcquire", false)
	defer span.End()
	ok, err := l.tryOnce(ctx)
	span.SetAttributes(attribute.Bool("latch.acquired", ok))
	return ok, err
}

// Acquire blocks until the lock is obtained or ctx is done. The wait parks
// on the store's signal queue and is woken by the holder's release.
func (l *Lock) Acquire(ctx context.Context) error {
	ctx, span := l.startSpan(ctx, "lock.Acquire", true)
	defer span.End()
	wait := l.expiry
	if wait == 0 {
		wait = idleWake
	}
	for {
		ok, err := l.tryOnce(ctx)
		if err != nil {
			return err
		}
		if ok {
			span.SetAttributes(attribute.Bool("latch.acquired", true))
			return nil
		}
		if err := l.await(ctx, wait); err != nil {
			return err
		}
	}
}

// AcquireTimeout blocks like Acquire but gives up once timeout elapses,
// returning false without error. The remaining budget shrinks across wait
// cycles. A zero timeout means no deadline. When an expiry is configured,
// the timeout must not exceed it unless auto-renewal keeps the lease alive
// across the wait.
func (l *Lock) AcquireTimeout(ctx context.Context, timeout time.Duration) (bool, error) {
	if timeout < 0 {
		return false, ErrInvalidTimeout
	}
	if timeout == 0 {
		if err := l.Acquire(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	if l.expiry > 0 && !l.autoRenew && timeout > l.expiry {
		return false, ErrTimeoutTooLarge
	}

	ctx, span := l.startSpan(ctx, "lock.AcquireTimeout", true)
	defer span.End()
	span.SetAttributes(attribute.Int64("latch.timeout_ms", timeout.Milliseconds()))

	deadline := time.Now().Add(timeout)
	for {
		ok, err := l.tryOnce(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			span.SetAttributes(attribute.Bool("latch.acquired", true))
			return true, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			span.SetAttributes(attribute.Bool("latch.acquired", false))
			return false, nil
		}
		wait := remaining
		if l.expiry > 0 && l.expiry < wait {
			wait = l.expiry
		}
		if err := l.await(ctx, wait); err != nil {
			return false, err
		}
	}
}

// Release frees the lock. It fails with ErrNotAcquired when the store shows
// a different holder or none at all, leaving any foreign holder untouched.
// A successful release wakes the waiting pool through the signal queue.
func (l *Lock) Release(ctx context.Context) error {
	ctx, span := l.startSpan(ctx, "lock.Release", false)
	defer span.End()

	l.stopRenewal()

	ok, err := l.store.DeleteIfMatch(ctx, l.holderKey, l.ownerID)
	if err != nil {
		return err
	}
	l.mu.Lock()
	wasHeld := l.held
	l.held = false
	l.mu.Unlock()
	if !ok {
		return ErrNotAcquired
	}
	// The key is gone at this point; report the release even if the wake
	// signal below fails, so observers never see a freed lock go unreported.
	metrics.ReleaseCounter.Inc()
	if wasHeld {
		metrics.HoldersGauge.Dec()
	}
	l.publish(ctx, notify.KindReleased)
	return l.store.Signal(ctx, l.signalKey, "1", signalTTL)
}

// tryOnce performs one conditional set, detecting re-entry by this owner id.
func (l *Lock) tryOnce(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.held {
		l.mu.Unlock()
		return false, ErrAlreadyAcquired
	}
	l.mu.Unlock()

	ok, err := l.store.SetIfAbsent(ctx, l.holderKey, l.ownerID, l.expiry)
	if err != nil {
		return false, err
	}
	if !ok {
		owner, exists, err := l.store.Get(ctx, l.holderKey)
		if err != nil {
			return false, err
		}
		if exists && owner == l.ownerID {
			return false, ErrAlreadyAcquired
		}
		return false, nil
	}

	l.mu.Lock()
	l.held = true
	if l.autoRenew {
		l.renew = l.startRenewal()
	}
	l.mu.Unlock()
	metrics.AcquireCounter.Inc()
	metrics.HoldersGauge.Inc()
	l.publish(ctx, notify.KindAcquired)
	return true, nil
}

// await parks on the signal queue for at most wait.
func (l *Lock) await(ctx context.Context, wait time.Duration) error {
	metrics.ContentionCounter.Inc()
	metrics.WaitersGauge.Inc()
	defer metrics.WaitersGauge.Dec()
	_, err := l.store.AwaitSignal(ctx, l.signalKey, wait)
	return err
}

func (l *Lock) publish(ctx context.Context, kind notify.Kind) {
	_ = l.bus.Publish(ctx, notify.NewEvent(l.name, kind, l.ownerID))
}

func (l *Lock) startSpan(ctx context.Context, op string, blocking bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("latch.name", l.name),
		attribute.String("latch.owner_id", l.ownerID),
		attribute.Bool("latch.blocking", blocking),
	))
}
