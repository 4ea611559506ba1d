// Package host implements the controller that drives one measurement run
// end to end: submit the kernels, time the relayed ticks, shut the
// persistent worker down, and copy the results back.
package host

import (
	"fmt"
	"io"
	"time"

	"github.com/kolkov/pipelatency/internal/latency/device"
	"github.com/kolkov/pipelatency/internal/latency/kernel"
	"github.com/kolkov/pipelatency/internal/latency/pipe"
	"github.com/kolkov/pipelatency/internal/latency/tick"
)

// Report carries everything one run measured.
type Report struct {
	// Fmax is the tick rate argument the run used.
	Fmax float64

	// FmaxSec is the spin iteration count per tick, round(Fmax * 1e6).
	FmaxSec uint64

	// Deltas holds the host-observed gap before each tick: entry n is the
	// time from the previous tick's arrival (or from timer submission for
	// n = 0) to tick n's arrival.
	Deltas [kernel.NumTicks]time.Duration

	// Total is the wall time from timer submission to confirmed worker
	// shutdown.
	Total time.Duration

	// Results is the result buffer copied back after shutdown. Slot 0
	// holds the worker's final counter snapshot (recorded by the shutdown
	// message); other slots are zero unless the run probed them.
	Results [kernel.ResultSlots]uint64
}

// Controller owns one run: the pipes, the shared counter, the result
// buffer, and the submission order of the kernel tasks. Controllers are
// single-use; Run may be called once.
type Controller struct {
	dev    *device.Device
	out    io.Writer
	fmax   float64
	iters  uint64
	probes []int

	events  *pipe.Pipe[int]
	ticks   *pipe.Pipe[uint64]
	host    *pipe.Pipe[int]
	counter tick.Counter
	results *device.Buffer
}

// New wires a controller to an open device and allocates the run's result
// buffer on it.
//
// Each probe is an extra event message sent after the measurement ticks
// and before shutdown; by that point the counter has reached its final
// value, so a probed slot records how far the run advanced. Probes
// outside [0, kernel.ResultSlots) fault the worker, which Run reports.
func New(dev *device.Device, fmax float64, out io.Writer, probes ...int) (*Controller, error) {
	results, err := dev.AllocUint64(kernel.ResultSlots)
	if err != nil {
		return nil, err
	}
	return &Controller{
		dev:     dev,
		out:     out,
		fmax:    fmax,
		iters:   kernel.IterationsPerTick(fmax),
		probes:  append([]int(nil), probes...),
		events:  pipe.New[int](kernel.PipeDepth),
		ticks:   pipe.New[uint64](kernel.PipeDepth),
		host:    pipe.New[int](kernel.PipeDepth),
		results: results,
	}, nil
}

// SendEvent submits a task that pushes one event message for the
// persistent worker to record. The caller must Wait the returned event
// before sending another, so the event pipe has a single producer at a
// time; Run itself follows that rule for probes and the shutdown message.
func (c *Controller) SendEvent(slot int) *device.Event {
	return c.dev.Submit("event-kernel", func() { c.events.Write(slot) })
}

// Run drives the full protocol and streams the run's console lines to the
// controller's writer as they happen:
//
//	fmax_sec: <iterations>
//	<tick>: <seconds since previous tick>     (NumTicks lines)
//	Sending shutdown message to persistent kernel
//	Waiting for persistent kernel shutdown
//	Persistent kernel shutdown
//	<slot value>                              (ResultSlots lines)
//	Freeing memory
//	Success
//
// On success Run frees the result buffer and closes the device: the
// controller consumes what it was given. On a fault Run returns the task's
// error immediately and releases nothing, leaving the device inspectable.
func (c *Controller) Run() (*Report, error) {
	report := &Report{Fmax: c.fmax, FmaxSec: c.iters}

	worker := kernel.NewPersistent(c.events, c.ticks, c.host, &c.counter, c.results)
	workerEv := c.dev.Submit("persistent-kernel", worker.Run)

	fmt.Fprintf(c.out, "fmax_sec: %d\n", c.iters)

	timer := kernel.NewTimer(c.iters, &c.counter, c.ticks)
	c.dev.Submit("timer-kernel", timer.Run)

	// Each tick is waited on through a separate task, so the measured
	// interval includes the same submit/complete round trip the real
	// harness pays to observe a device-side pipe.
	runStart := time.Now()
	start := runStart
	for n := 0; n < kernel.NumTicks; n++ {
		waitEv := c.dev.Submit("host-kernel", func() { c.host.Read() })
		if err := waitEv.Wait(); err != nil {
			return nil, err
		}
		now := time.Now()
		report.Deltas[n] = now.Sub(start)
		fmt.Fprintf(c.out, "%d: %v\n", n, report.Deltas[n].Seconds())
		start = now
	}

	for _, slot := range c.probes {
		if err := c.SendEvent(slot).Wait(); err != nil {
			return nil, err
		}
	}

	fmt.Fprintln(c.out, "Sending shutdown message to persistent kernel")
	// The sentinel task is deliberately not waited on; the worker's own
	// completion event is the signal that the message was honored.
	c.SendEvent(kernel.ShutdownMessage)

	fmt.Fprintln(c.out, "Waiting for persistent kernel shutdown")
	if err := workerEv.Wait(); err != nil {
		return nil, err
	}
	fmt.Fprintln(c.out, "Persistent kernel shutdown")
	report.Total = time.Since(runStart)

	copy(report.Results[:], c.results.CopyOut())
	for _, v := range report.Results {
		fmt.Fprintln(c.out, v)
	}

	fmt.Fprintln(c.out, "Freeing memory")
	c.dev.Free(c.results)
	if err := c.dev.Close(); err != nil {
		return nil, err
	}

	fmt.Fprintln(c.out, "Success")
	return report, nil
}
