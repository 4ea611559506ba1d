// Copyright 2025 The pipelatency Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// allowedCPU returns the lowest CPU the current thread may run on, so the
// test works inside restricted cpusets and containers.
func allowedCPU(t *testing.T) int {
	t.Helper()
	var mask unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &mask))
	for cpu := 0; cpu < 1024; cpu++ {
		if mask.IsSet(cpu) {
			return cpu
		}
	}
	t.Fatal("no allowed CPU found in affinity mask")
	return -1
}

// TestPinnedTaskGetsSingleCPUMask tests that a pinned task's OS thread ends
// up bound to exactly the requested CPU.
func TestPinnedTaskGetsSingleCPUMask(t *testing.T) {
	cpu := allowedCPU(t)

	dev, err := Open(Emulator, WithPinning(cpu))
	require.NoError(t, err)
	defer dev.Close()

	var maskSize int
	var onCPU bool
	ev := dev.Submit("pinned", func() {
		var after unix.CPUSet
		if err := unix.SchedGetaffinity(0, &after); err != nil {
			panic(err)
		}
		maskSize = after.Count()
		onCPU = after.IsSet(cpu)
	})

	require.NoError(t, ev.Wait())
	assert.Equal(t, 1, maskSize, "thread affinity mask should hold one CPU")
	assert.True(t, onCPU, "thread should be bound to the requested CPU")
}

// TestPinningFailureFaultsTask tests that an impossible CPU turns into a
// task fault rather than a silent unpinned run.
func TestPinningFailureFaultsTask(t *testing.T) {
	var mask unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &mask))
	if mask.IsSet(1023) {
		t.Skip("cpu 1023 exists on this host")
	}

	dev, err := Open(Emulator, WithPinning(1023))
	require.NoError(t, err)
	defer dev.Close()

	ev := dev.Submit("unpinnable", func() {})
	err = ev.Wait()
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "unpinnable", fault.Task)
}
