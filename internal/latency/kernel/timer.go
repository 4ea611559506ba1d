package kernel

import (
	"sync/atomic"

	"github.com/kolkov/pipelatency/internal/latency/pipe"
	"github.com/kolkov/pipelatency/internal/latency/tick"
)

// Timer is the pacing kernel. It owns the write side of the shared counter
// for the duration of a run and announces each completed tick with a token
// on the tick pipe.
type Timer struct {
	iters   uint64
	counter *tick.Counter
	ticks   *pipe.Pipe[uint64]
}

// NewTimer returns a timer that spins iters iterations per tick. Use
// IterationsPerTick to derive iters from a tick rate argument.
func NewTimer(iters uint64, counter *tick.Counter, ticks *pipe.Pipe[uint64]) *Timer {
	return &Timer{iters: iters, counter: counter, ticks: ticks}
}

// Run executes the full pacing schedule: reset the counter, then NumTicks
// times spin, advance, announce. The counter advance is published before
// the token is written, so any observer that saw tick n's token also sees
// a counter of at least n.
//
// Run returns after the last announcement; the timer takes no part in
// shutdown.
func (t *Timer) Run() {
	t.counter.Reset()
	for n := 0; n < NumTicks; n++ {
		spin(t.iters)
		t.counter.Advance()
		t.ticks.Write(1)
	}
}

// spin burns CPU for n iterations of work the compiler cannot elide.
//
// The loop counter is advanced with an atomic add, which forces one real
// memory operation per pass: the loop's cost stays proportional to n
// instead of being folded to a constant, the same way a fenced counter
// increment keeps a hardware busy-wait honest.
func spin(n uint64) {
	var scratch uint64
	for atomic.AddUint64(&scratch, 1) <= n {
	}
}
