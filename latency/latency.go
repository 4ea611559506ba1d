// Package latency provides the public API for the pipe latency harness.
//
// See doc.go for detailed documentation and examples.
package latency

import (
	"io"
	"os"

	"github.com/kolkov/pipelatency/internal/latency/device"
	"github.com/kolkov/pipelatency/internal/latency/host"
)

// DefaultFmax is the tick rate used when the caller does not choose one:
// 100 million spin iterations per tick.
const DefaultFmax = 100

// ErrDeviceNotFound reports that the selected execution target is not
// attached to this host. Match it with errors.Is; it usually means the
// run asked for hardware on an emulator-only build.
var ErrDeviceNotFound = device.ErrNotFound

// Report is the measurement summary returned by Run: the per-tick deltas
// the host observed, the total run time, and the result buffer copied back
// after shutdown.
type Report = host.Report

// Config describes one measurement run.
type Config struct {
	// Fmax is the tick rate argument. One measurement tick spins
	// round(Fmax * 1e6) iterations before notifying the host.
	Fmax float64

	// Device selects the execution target: "emulator" (the default, also
	// chosen by an empty string) or "hardware".
	Device string

	// PinCPUs, when non-empty, pins each kernel task to a dedicated OS
	// thread bound round-robin to these CPUs. Three concurrent tasks run
	// during a measurement, so three CPUs make a quiet run.
	PinCPUs []int

	// ProbeSlots are extra event messages sent after the measurement
	// ticks and before shutdown. Each probed slot records the worker's
	// counter snapshot at that point. Slots must lie in [0, ResultSlots);
	// anything else faults the worker.
	ProbeSlots []int

	// Output receives the run's console lines as they happen. Nil means
	// os.Stdout.
	Output io.Writer
}

// DefaultConfig returns the configuration the command-line harness uses
// when invoked with no arguments: DefaultFmax on the emulator, unpinned,
// writing to stdout.
func DefaultConfig() Config {
	return Config{Fmax: DefaultFmax}
}

// Run executes one measurement run and returns its report.
//
// Run opens the configured device, drives the three-kernel protocol to
// completion, and releases the device before returning. On success the
// report is complete and the device is closed; on error the run's
// resources are abandoned where they stand, matching the harness's
// fail-stop character.
func Run(cfg Config) (*Report, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	sel, err := device.ParseSelector(cfg.Device)
	if err != nil {
		return nil, err
	}
	var opts []device.Option
	if len(cfg.PinCPUs) != 0 {
		opts = append(opts, device.WithPinning(cfg.PinCPUs...))
	}

	dev, err := device.Open(sel, opts...)
	if err != nil {
		return nil, err
	}

	ctrl, err := host.New(dev, cfg.Fmax, out, cfg.ProbeSlots...)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return ctrl.Run()
}
