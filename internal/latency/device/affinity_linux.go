// Copyright 2025 The pipelatency Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

// CPU affinity for pinned kernel tasks on Linux.
//
// Latency runs are sensitive to scheduler migrations: a kernel task that
// hops cores mid-spin picks up cold caches and an unpredictable delay in
// exactly the interval being measured. On Linux the task's OS thread is
// bound to a single CPU with sched_setaffinity(2).
//
// The caller must already hold runtime.LockOSThread so the affinity mask
// lands on the thread that will actually run the task.

package device

import "golang.org/x/sys/unix"

// pinThread binds the calling OS thread to one CPU.
func pinThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	// Pid 0 means the calling thread, not the process.
	return unix.SchedSetaffinity(0, &set)
}
