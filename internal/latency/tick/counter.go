// Package tick implements the shared tick counter that host and kernel
// tasks observe.
//
// Counter is a single logical-time register: the timer task advances it
// once per measurement tick, and the persistent worker snapshots it when
// recording an event observation. Publication uses a release store and
// observation an acquire load, so a snapshot never reads a torn or stale
// value relative to the writes it follows.
package tick

import "sync/atomic"

// Counter is the shared tick register.
//
// Ownership: exactly one task may write (Reset, Advance) at a time; any
// number of tasks may Snapshot. The harness gives write ownership to the
// timer task for the whole run, which is what lets Advance be a plain
// load-add-store instead of an atomic read-modify-write.
type Counter struct {
	_ [64]byte      // Cache-line isolation from neighboring allocations.
	v atomic.Uint64 // Current tick value.
	_ [64]byte
}

// Reset sets the counter to zero before a measurement run.
//
// Only the writing task may call Reset, and only while no observer
// depends on the previous run's value.
//
//go:nosplit
func (c *Counter) Reset() {
	c.v.Store(0)
}

// Advance increments the counter by one and returns the new value.
//
// The increment is load-add-store rather than atomic.Add: the single-writer
// contract makes the full read-modify-write unnecessary, and the release
// store still publishes the new value to every observer.
//
//go:nosplit
func (c *Counter) Advance() uint64 {
	n := c.v.Load() + 1
	c.v.Store(n)
	return n
}

// Snapshot returns the current tick value.
//
// Safe to call from any task. A snapshot taken after an Advance has been
// observed through a pipe is guaranteed to include that Advance.
//
//go:nosplit
func (c *Counter) Snapshot() uint64 {
	return c.v.Load()
}
