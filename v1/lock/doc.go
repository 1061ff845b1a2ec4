// Package lock implements a distributed mutual-exclusion lock on top of a
// shared key-value store. Independent processes coordinate through two store
// keys per lock name: a holder key recording the current owner and a signal
// queue that wakes blocked acquirers the moment the lock is released, so
// nobody polls. Locks can carry an expiry to bound the damage of a crashed
// holder, and an optional renewal scheduler extends the lease while the
// protected work is still running.
package lock
