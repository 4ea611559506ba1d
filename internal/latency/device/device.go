// Package device emulates the accelerator runtime that hosts kernel tasks.
//
// The harness targets hardware that runs persistent kernels next to FIFO
// channels. This package provides the same contract on a plain CPU: a
// Device accepts submitted tasks, runs each on its own goroutine (optionally
// pinned to a dedicated OS thread), exposes device-resident result memory,
// and converts task panics into faults reported through the task's
// completion event.
//
// Selecting Hardware fails with ErrNotFound on every build of this module;
// the selector exists so callers exercise the same open/submit/wait flow
// they would use against a real board.
package device

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Environment variables honored by FromEnv.
const (
	// EnvDevice selects the execution target: "emulator" (default) or
	// "hardware".
	EnvDevice = "PIPELATENCY_DEVICE"

	// EnvPin is a comma-separated list of CPU numbers. When set, submitted
	// tasks are pinned round-robin to dedicated OS threads on those CPUs.
	EnvPin = "PIPELATENCY_PIN"
)

// Sentinel errors returned by device operations. Callers match them with
// errors.Is after unwrapping whatever context was added at the call site.
var (
	// ErrNotFound reports that the requested execution target is not
	// attached to this host.
	ErrNotFound = errors.New("device: accelerator not found")

	// ErrClosed reports an operation on a device after Close.
	ErrClosed = errors.New("device: device is closed")

	// ErrUnknownSelector reports a selector name outside the known set.
	ErrUnknownSelector = errors.New("device: unknown selector")
)

// Selector names an execution target for Open.
type Selector int

const (
	// Emulator runs kernel tasks on goroutines in this process.
	Emulator Selector = iota

	// Hardware requests a physical accelerator. No board support is
	// compiled into this module, so Open always fails with ErrNotFound.
	Hardware
)

// String returns the selector's parseable name.
func (s Selector) String() string {
	switch s {
	case Emulator:
		return "emulator"
	case Hardware:
		return "hardware"
	default:
		return "selector(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSelector maps a selector name to its value. Matching is
// case-insensitive and the empty string selects the emulator, so the
// result of os.Getenv can be passed through directly.
func ParseSelector(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "emulator":
		return Emulator, nil
	case "hardware":
		return Hardware, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSelector, name)
	}
}

// Fault describes a kernel task that terminated abnormally. The runtime
// captures the task's panic value and delivers it through the completion
// event instead of crashing the process, mirroring how an accelerator
// runtime raises an asynchronous error on the host.
type Fault struct {
	Task   string // Name the task was submitted under.
	Reason any    // Recovered panic value or pinning failure.
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("device: task %q faulted: %v", f.Task, f.Reason)
}

// Option configures a Device at Open time.
type Option func(*options)

type options struct {
	pins []int
}

// WithPinning pins each submitted task to a dedicated OS thread bound to
// one of the given CPUs, assigned round-robin in submission order.
//
// Pinning removes scheduler migration noise from latency measurements.
// The list should hold at least as many CPUs as the run has concurrent
// tasks (the standard measurement uses two kernels plus the host waiter).
func WithPinning(cpus ...int) Option {
	return func(o *options) {
		o.pins = append([]int(nil), cpus...)
	}
}

// Device is an open execution target accepting kernel task submissions.
//
// All methods are safe for concurrent use. A Device tracks its outstanding
// tasks and buffer allocations; Close blocks until every submitted task has
// completed, so callers must resolve their shutdown protocol (for the
// harness: send the sentinel, wait the persistent kernel) before closing.
type Device struct {
	opts    options
	closed  atomic.Bool
	tasks   sync.WaitGroup
	nextPin atomic.Uint64 // Round-robin cursor into opts.pins.

	allocMu sync.Mutex
	live    int // Buffers allocated and not yet freed.
}

// Open prepares the selected execution target.
//
// Emulator always succeeds. Hardware fails with ErrNotFound because no
// board backend is compiled in; the caller is expected to surface a
// compile-for-the-right-target hint to the user.
func Open(sel Selector, opts ...Option) (*Device, error) {
	switch sel {
	case Emulator:
		d := &Device{}
		for _, opt := range opts {
			opt(&d.opts)
		}
		return d, nil
	case Hardware:
		return nil, fmt.Errorf("open %v: %w", sel, ErrNotFound)
	default:
		return nil, fmt.Errorf("open: %w: %d", ErrUnknownSelector, int(sel))
	}
}

// FromEnv reads EnvDevice and EnvPin and returns the selector and CPU pin
// list they describe. Unset variables yield the defaults: emulator, no
// pinning.
func FromEnv() (Selector, []int, error) {
	sel, err := ParseSelector(os.Getenv(EnvDevice))
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", EnvDevice, err)
	}
	var cpus []int
	if raw := os.Getenv(EnvPin); raw != "" {
		cpus, err = parsePinList(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: %w", EnvPin, err)
		}
	}
	return sel, cpus, nil
}

// parsePinList parses a comma-separated CPU list such as "0,2,4".
func parsePinList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	cpus := make([]int, 0, len(parts))
	for _, part := range parts {
		cpu, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("device: bad cpu list %q: %v", raw, err)
		}
		if cpu < 0 {
			return nil, fmt.Errorf("device: bad cpu list %q: negative cpu %d", raw, cpu)
		}
		cpus = append(cpus, cpu)
	}
	return cpus, nil
}

// Event is the completion handle for one submitted task.
//
// The zero value is not useful; events come from Submit. Wait and Done may
// be used from any goroutine, any number of times.
type Event struct {
	task string
	done chan struct{}
	err  error // Written by the task goroutine before done is closed.
}

// Task returns the name the task was submitted under.
func (e *Event) Task() string {
	return e.task
}

// Done returns a channel closed when the task has finished, successfully
// or not. Useful in select loops; plain callers should prefer Wait.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the task finishes and returns nil on success or the
// *Fault describing how it died.
func (e *Event) Wait() error {
	<-e.done
	return e.err
}

// Submit schedules fn as a kernel task and returns its completion event.
//
// The task runs on its own goroutine. If the device was opened with
// pinning, the goroutine is locked to an OS thread first and that thread
// is bound to the task's CPU; the lock is never released, so the thread
// is retired when the task returns rather than rejoining the scheduler
// pool with a stale affinity mask.
//
// A panic inside fn does not crash the process: Submit converts it into a
// *Fault delivered through the event. Submitting to a closed device yields
// an event that has already failed with ErrClosed.
func (d *Device) Submit(task string, fn func()) *Event {
	ev := &Event{task: task, done: make(chan struct{})}
	if d.closed.Load() {
		ev.err = fmt.Errorf("submit %q: %w", task, ErrClosed)
		close(ev.done)
		return ev
	}

	d.tasks.Add(1)
	go func() {
		defer d.tasks.Done()
		defer close(ev.done)
		defer func() {
			if r := recover(); r != nil {
				ev.err = &Fault{Task: task, Reason: r}
			}
		}()

		if cpus := d.opts.pins; len(cpus) != 0 {
			runtime.LockOSThread()
			cpu := cpus[int(d.nextPin.Add(1)-1)%len(cpus)]
			if err := pinThread(cpu); err != nil {
				ev.err = &Fault{Task: task, Reason: fmt.Errorf("pin to cpu %d: %v", cpu, err)}
				return
			}
		}

		fn()
	}()
	return ev
}

// Close marks the device closed and waits for all outstanding tasks.
//
// Close is idempotent. It intentionally does not cancel tasks: a task that
// never finishes its protocol (for the harness, a persistent kernel that
// was never sent the shutdown sentinel) blocks Close forever, which is the
// bug Close is making visible.
func (d *Device) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	d.tasks.Wait()
	return nil
}

// Leaked reports buffers allocated on the device and not yet freed.
// Diagnostic accessor for tests and teardown checks.
func (d *Device) Leaked() int {
	d.allocMu.Lock()
	defer d.allocMu.Unlock()
	return d.live
}
