package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kolkov/pipelatency/latency"
)

// errHelp signals that the user asked for usage rather than a run.
var errHelp = errors.New("help requested")

// parseFmax interprets the command line: no arguments selects the default
// rate, -h/--help requests usage, and anything else must parse as a
// decimal tick rate. Arguments past the first are ignored.
func parseFmax(args []string) (float64, error) {
	if len(args) == 0 {
		return latency.DefaultFmax, nil
	}
	switch args[0] {
	case "-h", "--help":
		return 0, errHelp
	}
	fmax, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fmax %q: expected a decimal number", args[0])
	}
	return fmax, nil
}
