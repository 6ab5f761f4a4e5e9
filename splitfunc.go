package stringsplitter

import (
	"bufio"
	"errors"
)

// errStopScan aborts a scan after the first span.
var errStopScan = errors.New("stop scan")

// SplitFunc adapts the scan rules to a bufio.Scanner. Tokens are the
// parts a Split of the whole stream would yield, with one bufio-style
// difference: empty input produces no tokens at all rather than a
// single empty part. A part longer than the scanner's buffer surfaces
// as bufio.ErrTooLong.
func SplitFunc(cfg Config) (bufio.SplitFunc, error) {

	r, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	// a marker consuming the final input byte owes one empty token after
	// the data runs out
	var tailEmpty bool

	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {

		if atEOF && len(data) == 0 {
			if tailEmpty {
				tailEmpty = false
				return 0, []byte{}, nil
			}
			return 0, nil, nil
		}

		var first span
		var found bool
		r.scanSpans(data, !atEOF, func(s span) error {
			first, found = s, true
			return errStopScan
		})

		if !found {
			// no settled span yet: ask for a wider window
			return 0, nil, nil
		}

		if atEOF && first.markerLen > 0 && first.next == len(data) {
			tailEmpty = true
		}

		return first.next, data[first.start:first.end], nil
	}, nil
}
