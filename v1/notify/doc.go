// Package notify propagates lock lifecycle events (acquired, released,
// renewed, lost, reset) to observers. It is the injectable observability
// channel of the lock: callers subscribe to a lock name and receive every
// transition, including out-of-band losses discovered by the renewal
// scheduler. Backends exist for in-process use, Redis pub/sub, NATS and
// Kafka.
package notify
