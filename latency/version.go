package latency

import "github.com/kolkov/pipelatency/internal/latency/kernel"

// Version information for the pipe latency harness.
const (
	// Version is the current version of the harness.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Protocol constants, re-exported for callers sizing their own buffers or
// interpreting a Report.
const (
	// NumTicks is the number of measurement ticks in one run.
	NumTicks = kernel.NumTicks

	// ResultSlots is the size of the result buffer; valid probe slots are
	// [0, ResultSlots).
	ResultSlots = kernel.ResultSlots

	// PipeDepth is the depth of each host/kernel pipe.
	PipeDepth = kernel.PipeDepth
)

// Info describes the harness build.
type Info struct {
	// Version is the harness version string.
	Version string

	// NumTicks, ResultSlots, and PipeDepth echo the protocol constants
	// this build was compiled with.
	NumTicks    int
	ResultSlots int
	PipeDepth   int
}

// GetInfo returns information about the harness.
//
// Example:
//
//	info := latency.GetInfo()
//	fmt.Printf("pipelatency %s (%d ticks per run)\n", info.Version, info.NumTicks)
func GetInfo() Info {
	return Info{
		Version:     Version,
		NumTicks:    NumTicks,
		ResultSlots: ResultSlots,
		PipeDepth:   PipeDepth,
	}
}
