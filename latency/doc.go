// Package latency measures host/kernel event-notification latency over
// FIFO pipes, the way an FPGA-style persistent kernel reports ticks back
// to its host program.
//
// This package is the library entry point; the pipelatency command wraps
// it for interactive use. One run drives a fixed protocol: a timer kernel
// paces ten ticks by spinning a configurable number of iterations per
// tick, a persistent worker kernel relays each tick to the host through a
// depth-4 pipe, and the host timestamps every relayed tick as it arrives.
// The gap between consecutive timestamps, minus the spin itself, is the
// notification latency under test.
//
// # Quick Start
//
// From the command line:
//
//	$ pipelatency 100
//	fmax:  100
//	fmax_sec: 100000000
//	0: 0.105418
//	...
//	Success
//
// As a library:
//
//	cfg := latency.DefaultConfig()
//	cfg.Fmax = 100
//
//	report, err := latency.Run(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for n, d := range report.Deltas {
//		fmt.Printf("tick %d: %v\n", n, d)
//	}
//
// # Measurement Protocol
//
// Three pipes connect the host and the two kernels:
//
//	host --(event messages)--> persistent worker
//	timer --(tick tokens)----> persistent worker
//	persistent worker --(relayed tokens)--> host
//
// The worker polls both inputs in one loop. A tick token is relayed to the
// host; an event message is recorded into the message's result slot as a
// snapshot of the shared tick counter. Message 0 is the shutdown sentinel:
// it records slot 0 and terminates the worker, so every completed run
// leaves the final counter value in Results[0].
//
// # API Overview
//
// The package provides:
//   - Configuration and execution: [Config], [DefaultConfig], [Run]
//   - Results: [Report]
//   - Error matching: [ErrDeviceNotFound]
//   - Build information: [GetInfo], [Version]
//
// # Performance Characteristics
//
// On the emulator the protocol overhead per tick is two pipe hops plus one
// task round trip, typically a few microseconds of scheduler wakeup on an
// idle machine. Pinning (Config.PinCPUs) binds each kernel task to its own
// CPU and removes most migration noise; the remaining jitter is what the
// harness exists to expose.
//
// # Compatibility
//
//   - Operating systems: Linux (with CPU pinning), others (unpinned)
//   - Go version: 1.24 or later
//   - Hardware targets: none compiled in; "hardware" reports
//     ErrDeviceNotFound
//
// # Links
//
// Project repository:
// https://github.com/kolkov/pipelatency
//
// Documentation:
// https://pkg.go.dev/github.com/kolkov/pipelatency/latency
package latency
