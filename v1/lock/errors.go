package lock

import "errors"

var (
	// ErrAlreadyAcquired is returned when the caller's own owner id already
	// holds the lock. Callers must treat this as a programming error, not a
	// race to retry.
	ErrAlreadyAcquired = errors.New("latch: lock already acquired by this owner id")

	// ErrNotAcquired is returned when a release finds the lock absent or held
	// by a different owner id. The foreign holder is left untouched.
	ErrNotAcquired = errors.New("latch: lock not acquired by this owner id")

	// ErrInvalidTimeout is returned for a negative acquisition timeout.
	ErrInvalidTimeout = errors.New("latch: timeout must not be negative")

	// ErrInvalidExpiry is returned for a negative expiry.
	ErrInvalidExpiry = errors.New("latch: expiry must not be negative")

	// ErrTimeoutTooLarge is returned when the acquisition timeout exceeds the
	// expiry and auto-renewal is off: the lock could expire while the caller
	// still believes it is waiting productively.
	ErrTimeoutTooLarge = errors.New("latch: timeout exceeds expiry without auto-renewal")

	// ErrNotExpirable is returned when auto-renewal is requested for a lock
	// without an expiry, as there is no lease to extend.
	ErrNotExpirable = errors.New("latch: auto-renewal requires an expiry")
)
