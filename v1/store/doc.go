// Package store defines the minimal key-value capability locks are built on:
// conditional set, compare-and-delete, conditional expiry extension and a
// blocking signal queue. A Redis adapter and an in-memory adapter are
// provided; the in-memory one is mainly useful for tests and single-process
// deployments.
package store
