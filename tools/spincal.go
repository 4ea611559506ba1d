//go:build ignore
// +build ignore

// This tool calibrates the spin loop that paces measurement ticks.
// Run with: go run tools/spincal.go
//
// One measurement tick spins round(fmax * 1e6) iterations, so the wall
// time of a tick is fmax * 1e6 * (cost of one iteration). This program
// measures that per-iteration cost on the current machine and suggests
// the fmax that makes a tick last about one second.
package main

import (
	"fmt"
	"sync/atomic"
	"time"
)

// spin mirrors the timer kernel's busy-wait: one atomic add per iteration
// so the loop cannot be folded away. Keep this in sync with the kernel
// package's spin loop or the calibration is meaningless.
func spin(n uint64) {
	var scratch uint64
	for atomic.AddUint64(&scratch, 1) <= n {
	}
}

func main() {
	const iters = 50000000

	// Warm up the core and let the clock governor settle.
	spin(iters / 10)

	best := time.Duration(1<<62 - 1)
	for round := 0; round < 5; round++ {
		start := time.Now()
		spin(iters)
		if d := time.Since(start); d < best {
			best = d
		}
	}

	perIter := float64(best.Nanoseconds()) / float64(iters)

	fmt.Printf("iterations per round: %d\n", iters)
	fmt.Printf("best of 5 rounds:     %v\n", best)
	fmt.Printf("per iteration:        %.3f ns\n", perIter)
	fmt.Printf("\nfmax for ~1s ticks:   %.1f\n", 1000/perIter)
}
