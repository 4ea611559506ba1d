// Package kernel implements the two device tasks of the latency protocol:
// a timer that paces measurement ticks and a persistent worker that relays
// them to the host and records event observations.
//
// Protocol, one run:
//
//	timer:      reset counter; NumTicks times { spin; advance counter;
//	            token -> tick pipe }
//	persistent: loop { event message? record counter snapshot in its result
//	            slot, terminate if it is the shutdown message; tick token?
//	            relay a token to the host pipe }
//	host:       NumTicks times { wait for a relayed token; timestamp };
//	            send shutdown; wait for the persistent worker
//
// The host-visible latency of one tick is therefore spin time plus two pipe
// hops plus the host's own wakeup, which is exactly the quantity the
// harness exists to measure.
package kernel

import "math"

// Protocol constants shared by the kernels and the host controller.
const (
	// NumTicks is the number of measurement ticks in one run.
	NumTicks = 10

	// ResultSlots is the size of the result buffer in words. Event
	// messages are result slot indexes, so they must stay in
	// [0, ResultSlots).
	ResultSlots = 8

	// PipeDepth is the depth of each pipe connecting host and kernels.
	PipeDepth = 4

	// ShutdownMessage terminates the persistent worker. It is also a
	// valid slot index, so a completed run leaves the worker's final
	// counter snapshot in slot 0.
	ShutdownMessage = 0
)

// IterationsPerTick converts the tick rate argument fmax into the spin
// iteration count for one tick: round(fmax * 1e6).
//
// The clamps keep hostile inputs deterministic: non-positive and NaN
// rates spin zero iterations, and rates whose product overflows uint64
// saturate instead of wrapping.
func IterationsPerTick(fmax float64) uint64 {
	if math.IsNaN(fmax) || fmax <= 0 {
		return 0
	}
	iters := math.Round(fmax * 1e6)
	if iters >= float64(math.MaxUint64) {
		return math.MaxUint64
	}
	return uint64(iters)
}
