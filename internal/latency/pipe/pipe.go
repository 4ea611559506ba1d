// Package pipe implements the bounded FIFO channels that connect host and
// kernel tasks in the latency harness.
//
// A Pipe is the software analog of an on-chip FIFO: fixed depth, first-in
// first-out, with non-blocking and blocking endpoints on both sides. The
// harness wires three of them between the host controller and the kernel
// tasks (event messages, tick announcements, relayed ticks), each with a
// depth of four entries.
package pipe

import (
	"runtime"
	"sync/atomic"
)

// spinBudget is the number of failed attempts a blocking Read or Write
// performs before it starts yielding the processor between retries.
//
// The budget keeps the fast case (data arrives within a few hundred
// nanoseconds) on-core without a scheduler round trip, while the slow case
// degrades to polite spinning instead of starving sibling goroutines.
const spinBudget = 1024

// slot is the container for one entry in the ring.
//
// Each slot stores:
//   - seq: A ticket number gating when the slot may be written or read
//   - val: The payload for this entry
//
// The ticket protocol doubles as the memory fence: a producer publishes val
// with a release store of seq, and a consumer observes val only after an
// acquire load of seq returns the matching ticket. Payload reads and writes
// therefore never race even though val itself is a plain field.
type slot[T any] struct {
	seq atomic.Uint64 // Slot ticket number.
	val T             // Payload for this entry.
}

// Pipe is a lock-free single-producer/single-consumer bounded FIFO.
//
// Architecture:
//   - Fixed-size ring of power-of-two depth (the harness uses 4)
//   - Per-slot ticket numbers for write/read readiness (no shared lock)
//   - Separate cache lines for the consumer and producer cursors
//
// Ticket protocol:
//   - Slot i starts with ticket i
//   - A producer holding tail t may write slot t&mask when its ticket == t,
//     then advances the ticket to t+1 (slot readable)
//   - A consumer holding head h may read slot h&mask when its ticket == h+1,
//     then advances the ticket to h+depth (slot writable on the next lap)
//
// Thread Safety: Exactly one goroutine may act as producer and one as
// consumer at any time. Either role may be handed to another goroutine if
// the handoff itself is synchronized (the harness serializes event writers
// by waiting on each submitted task before starting the next). Len and Cap
// are safe from anywhere.
type Pipe[T any] struct {
	_    [64]byte      // Cache-line isolation (consumer cursor).
	head atomic.Uint64 // Consumer cursor, advanced only by the reader.

	_    [64]byte      // Cache-line isolation (producer cursor).
	tail atomic.Uint64 // Producer cursor, advanced only by the writer.

	_ [64]byte // Isolation from neighboring allocations.

	mask  uint64    // == depth - 1 (bitmask for modulo).
	step  uint64    // == depth     (ticket stride for wraparound).
	slots []slot[T] // Backing ring buffer.
}

// New constructs a pipe with the given depth.
//
// Depth must be a positive power of two; New panics otherwise. The
// power-of-two requirement lets the hot path replace modulo with a bitmask,
// and a wrong depth is a construction bug rather than a runtime condition.
func New[T any](depth int) *Pipe[T] {
	if depth <= 0 || depth&(depth-1) != 0 {
		panic("pipe: depth must be >0 and a power of two")
	}
	p := &Pipe[T]{
		mask:  uint64(depth - 1),
		step:  uint64(depth),
		slots: make([]slot[T], depth),
	}
	for i := range p.slots {
		p.slots[i].seq.Store(uint64(i))
	}
	return p
}

// TryWrite attempts to enqueue a value without blocking.
//
// Returns false if the pipe is full. This is the producer half of the
// ticket protocol; only the goroutine currently acting as producer may
// call it.
//
//go:nosplit
func (p *Pipe[T]) TryWrite(v T) bool {
	t := p.tail.Load()
	s := &p.slots[t&p.mask]
	if s.seq.Load() != t {
		// Slot still holds an unconsumed entry from the previous lap.
		return false
	}
	s.val = v
	s.seq.Store(t + 1)
	p.tail.Store(t + 1)
	return true
}

// TryRead attempts to dequeue the oldest value without blocking.
//
// Returns the zero value and false if the pipe is empty. This is the
// consumer half of the ticket protocol; only the goroutine currently
// acting as consumer may call it.
//
//go:nosplit
func (p *Pipe[T]) TryRead() (T, bool) {
	h := p.head.Load()
	s := &p.slots[h&p.mask]
	if s.seq.Load() != h+1 {
		var zero T
		return zero, false
	}
	v := s.val
	s.seq.Store(h + p.step)
	p.head.Store(h + 1)
	return v, true
}

// Write enqueues a value, spinning until space is available.
//
// The first spinBudget retries stay on-core; after that each retry yields
// the processor so a descheduled consumer can run. Write never fails: a
// full pipe means the producer waits, matching blocking-FIFO semantics.
func (p *Pipe[T]) Write(v T) {
	for spins := 0; !p.TryWrite(v); spins++ {
		if spins > spinBudget {
			runtime.Gosched()
		}
	}
}

// Read dequeues the oldest value, spinning until one is available.
//
// Backoff behavior matches Write: a bounded hot spin, then yielding
// retries until the producer publishes an entry.
func (p *Pipe[T]) Read() T {
	for spins := 0; ; spins++ {
		if v, ok := p.TryRead(); ok {
			return v
		}
		if spins > spinBudget {
			runtime.Gosched()
		}
	}
}

// Len reports the number of entries currently buffered.
//
// The value is a snapshot: with a live producer or consumer it may be
// stale by the time the caller looks at it. Intended for diagnostics and
// tests, not for flow control.
func (p *Pipe[T]) Len() int {
	return int(p.tail.Load() - p.head.Load())
}

// Cap reports the fixed depth of the pipe.
func (p *Pipe[T]) Cap() int {
	return len(p.slots)
}
