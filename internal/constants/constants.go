package constants

import (
	"os"
	"strconv"
)

const (
	// Largest single part the streaming engine will buffer before declaring
	// the input unsplittable within the ring window. The quantized ring is
	// always sized to hold at least two of these.
	MaxPartPayloadSize = 1024 * 1024

	// A marker wider than the ring window could never complete a deferred
	// match mid-stream, hence the engine-side cap. The in-memory library
	// enforces no such limit.
	MaxMarkerSize = 4 * 1024
)

type Incomparabe [0]func()

var LongTests bool
var VeryLongTests bool

func init() {
	VeryLongTests = isTruthy("TEST_SPLITTER_VERY_LONG")
	LongTests = VeryLongTests || isTruthy("TEST_SPLITTER_LONG")
}

func isTruthy(varname string) bool {
	envStr := os.Getenv(varname)
	if envStr != "" {
		if num, err := strconv.ParseUint(envStr, 10, 64); err != nil || num != 0 {
			return true
		}
	}
	return false
}

var PerformSanityChecks = true
