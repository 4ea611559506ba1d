// Package main implements the pipelatency command.
//
// pipelatency measures host/kernel event-notification latency over FIFO
// pipes. One invocation is one measurement run:
//
//  1. Submit a persistent worker kernel that polls its pipes forever
//  2. Submit a timer kernel that paces ten ticks at the requested rate
//  3. Timestamp each tick as the worker relays it to the host
//  4. Shut the worker down with a sentinel event and print the results
//
// Usage:
//
//	pipelatency            # measure at the default rate (fmax 100)
//	pipelatency 0.5        # measure at fmax 0.5
//	pipelatency -h         # print usage
//
// The ten printed deltas are the host-observed tick-to-tick latencies in
// seconds; subtracting the spin time per tick leaves the notification
// overhead under test.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kolkov/pipelatency/internal/latency/device"
	"github.com/kolkov/pipelatency/latency"
)

func main() {
	fmax, err := parseFmax(os.Args[1:])
	if errors.Is(err, errHelp) {
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}

	sel, pins, err := device.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("fmax:  %v\n", fmax)

	cfg := latency.DefaultConfig()
	cfg.Fmax = fmax
	cfg.Device = sel.String()
	cfg.PinCPUs = pins

	if _, err := latency.Run(cfg); err != nil {
		fmt.Printf("Caught a device exception:\n%v\n", err)
		if errors.Is(err, latency.ErrDeviceNotFound) {
			fmt.Println("If you are targeting an accelerator board, please ensure that " +
				"your system has a correctly configured board.")
			fmt.Println("If you are targeting the emulator, set " +
				device.EnvDevice + "=emulator or leave it unset.")
		}
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Print(`pipelatency - host/kernel event-notification latency harness

USAGE:
    pipelatency [fmax]

ARGUMENTS:
    fmax    Tick rate for the timer kernel (default 100). One measurement
            tick spins round(fmax * 1e6) iterations before notifying the
            host, so fmax reads as a clock in MHz when an iteration costs
            about a nanosecond.

ENVIRONMENT:
    PIPELATENCY_DEVICE    Execution target: "emulator" (default) or
                          "hardware".
    PIPELATENCY_PIN       Comma-separated CPU list. Kernel tasks are
                          pinned round-robin to dedicated OS threads on
                          these CPUs for a quieter measurement.

EXAMPLES:
    # Measure at the default rate
    pipelatency

    # Short run: one thousandth of the default spin per tick
    pipelatency 0.1

    # Pin the kernels to CPUs 2-4
    PIPELATENCY_PIN=2,3,4 pipelatency 100

ABOUT:
    pipelatency measures how long the host waits to observe an event
    raised by a persistent kernel on the other side of FIFO pipes. A
    timer kernel paces ten ticks, a persistent worker relays each tick,
    and the host timestamps the arrivals. The printed deltas are the
    end-to-end notification latencies; the result buffer dump at the end
    shows the worker's recorded counter snapshots, slot 0 holding the
    final value captured by the shutdown event.

FOR MORE INFORMATION:
    Repository: https://github.com/kolkov/pipelatency
    Documentation: https://pkg.go.dev/github.com/kolkov/pipelatency/latency

`)
}
