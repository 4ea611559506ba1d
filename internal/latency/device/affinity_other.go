// Copyright 2025 The pipelatency Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

// Fallback for platforms without thread affinity support.
//
// WithPinning still locks each task to its own OS thread on these
// platforms, which removes goroutine migration; binding that thread to a
// specific CPU is left to the operating system.

package device

// pinThread is a no-op where sched_setaffinity is unavailable.
func pinThread(cpu int) error {
	return nil
}
