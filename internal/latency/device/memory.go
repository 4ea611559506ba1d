// Device-resident result memory.
//
// On real hardware the result buffer lives in device global memory: kernels
// store into it during the run and the host copies it back afterwards. The
// emulator models each word as an atomic so a store by a kernel task is
// immediately and safely observable from any other task or from the host,
// with no extra synchronization required of callers.

package device

import (
	"fmt"
	"sync/atomic"
)

// Buffer is a fixed-size array of 64-bit words allocated on a Device.
type Buffer struct {
	dev   *Device
	freed atomic.Bool
	slots []atomic.Uint64
}

// AllocUint64 allocates a zeroed buffer of the given number of words.
//
// Fails with ErrClosed once the device is closed, and rejects non-positive
// sizes. Every successful allocation must be returned with Device.Free;
// Leaked reports the outstanding count.
func (d *Device) AllocUint64(words int) (*Buffer, error) {
	if d.closed.Load() {
		return nil, fmt.Errorf("alloc %d words: %w", words, ErrClosed)
	}
	if words <= 0 {
		return nil, fmt.Errorf("device: alloc %d words: size must be positive", words)
	}

	d.allocMu.Lock()
	d.live++
	d.allocMu.Unlock()

	return &Buffer{dev: d, slots: make([]atomic.Uint64, words)}, nil
}

// Free releases a buffer. Freeing twice panics: a double free is a host
// protocol bug, not a runtime condition to tolerate.
func (d *Device) Free(b *Buffer) {
	if b.dev != d {
		panic("device: free of buffer from another device")
	}
	if b.freed.Swap(true) {
		panic("device: double free")
	}
	d.allocMu.Lock()
	d.live--
	d.allocMu.Unlock()
}

// Len returns the buffer size in words.
func (b *Buffer) Len() int {
	return len(b.slots)
}

// Store writes v to slot i.
//
// The index is bounds-checked by the slice access: a kernel storing outside
// the buffer panics, which the device runtime reports as a task fault. Use
// after Free panics the same way.
func (b *Buffer) Store(i int, v uint64) {
	if b.freed.Load() {
		panic("device: store to freed buffer")
	}
	b.slots[i].Store(v)
}

// Load reads slot i with the same bounds and lifetime rules as Store.
func (b *Buffer) Load(i int) uint64 {
	if b.freed.Load() {
		panic("device: load from freed buffer")
	}
	return b.slots[i].Load()
}

// CopyOut snapshots the buffer into host memory.
//
// Each word is read atomically, but the snapshot as a whole is not a
// consistent cut if kernels are still storing; the harness only calls it
// after the persistent kernel's completion event has been waited on.
func (b *Buffer) CopyOut() []uint64 {
	if b.freed.Load() {
		panic("device: copy from freed buffer")
	}
	out := make([]uint64, len(b.slots))
	for i := range b.slots {
		out[i] = b.slots[i].Load()
	}
	return out
}
