package kernel

import (
	"github.com/kolkov/pipelatency/internal/latency/device"
	"github.com/kolkov/pipelatency/internal/latency/pipe"
	"github.com/kolkov/pipelatency/internal/latency/tick"
)

// Persistent is the long-lived worker kernel. It services two inputs in a
// single poll loop: event messages, each recorded as a counter snapshot in
// the message's result slot, and tick tokens, each relayed to the host.
type Persistent struct {
	events  *pipe.Pipe[int]
	ticks   *pipe.Pipe[uint64]
	host    *pipe.Pipe[int]
	counter *tick.Counter
	results *device.Buffer
}

// NewPersistent wires a worker to its pipes, the shared counter, and the
// result buffer it records into.
func NewPersistent(events *pipe.Pipe[int], ticks *pipe.Pipe[uint64], host *pipe.Pipe[int],
	counter *tick.Counter, results *device.Buffer) *Persistent {
	return &Persistent{
		events:  events,
		ticks:   ticks,
		host:    host,
		counter: counter,
		results: results,
	}
}

// Run polls both input pipes until the shutdown message arrives.
//
// Each pass checks at most one event message and one tick token, in that
// order. An event message is recorded before the shutdown check, so the
// sentinel leaves its own snapshot in slot 0 on the way out. A message
// outside [0, ResultSlots) hits the result buffer's bounds check and
// panics, which the device runtime reports as a task fault.
//
// The loop never yields on its own. The worker is meant to stay resident
// the way a persistent kernel occupies its hardware, and scheduler
// fairness is the runtime's preemption to provide, not the loop's.
//
// Shutdown is single-phase: once the sentinel is read the worker is gone,
// and a tick token still in flight stays unrelayed. The host's protocol
// (drain all NumTicks relays, then send the sentinel) is what keeps that
// benign.
func (w *Persistent) Run() {
	for {
		if msg, ok := w.events.TryRead(); ok {
			w.results.Store(msg, w.counter.Snapshot())
			if msg == ShutdownMessage {
				return
			}
		}
		if _, ok := w.ticks.TryRead(); ok {
			w.host.Write(1)
		}
	}
}
