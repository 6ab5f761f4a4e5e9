package stringsplitter

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

// rules is the byte-level compiled form of a Config.
type rules struct {
	splitters  [][]byte
	delimOpen  [][]byte
	delimClose [][]byte
	keep       bool
	trim       bool
}

// span is one part-to-be, expressed as offsets into the scanned buffer.
// start/end bound the payload with keep/trim already applied; next is
// the resume offset just past the matched marker; markerLen is 0 for
// the remainder span of a terminal scan.
type span struct {
	start, end int
	next       int
	markerLen  int
}

// matchAt reports a literal match of pat at pos, provided the match ends
// within bound.
func matchAt(buf []byte, pos int, pat []byte, bound int) bool {
	end := pos + len(pat)
	return end <= bound && bytes.Equal(buf[pos:end], pat)
}

// scanSpans runs the marker scan over buf, feeding each span to emit in
// input order and returning how many leading bytes are settled.
//
// With allowCarryOver set, buf is a window onto a longer stream: a match
// reaching the very last byte could instead be the prefix of a longer
// match continuing past it, so only matches ending strictly before the
// buffer end count, and everything from consumed onward is left for a
// wider rescan. Without it the scan is terminal: matches may touch the
// buffer end and a remainder span is always emitted, empty or not.
//
// Patterns are matched byte-wise. UTF-8 is self-synchronizing, so a
// multi-byte marker can never falsely match inside an unrelated code
// point.
func (r *rules) scanSpans(buf []byte, allowCarryOver bool, emit func(span) error) (consumed int, err error) {

	bound := len(buf)
	if allowCarryOver {
		bound--
	}

	var delimited bool
	sliceStart := 0

scanning:
	for i := 0; i < bound; i++ {

		// delimiter state switches take precedence over splitters, and
		// any close marker of the set ends a delimited stretch
		if delimited {
			for _, pat := range r.delimClose {
				if matchAt(buf, i, pat, bound) {
					delimited = false
					i += len(pat) - 1
					continue scanning
				}
			}
			continue
		}

		for _, pat := range r.delimOpen {
			if matchAt(buf, i, pat, bound) {
				delimited = true
				i += len(pat) - 1
				continue scanning
			}
		}

		for _, pat := range r.splitters {
			if !matchAt(buf, i, pat, bound) {
				continue
			}

			markerEnd := i + len(pat)
			s := span{start: sliceStart, end: i, next: markerEnd, markerLen: len(pat)}
			if r.keep {
				s.end = markerEnd
			}
			if r.trim {
				s.start, s.end = trimRange(buf, s.start, s.end)
			}

			if err = emit(s); err != nil {
				return sliceStart, err
			}

			sliceStart = markerEnd
			i = markerEnd - 1
			continue scanning
		}
	}

	// a terminal scan settles everything: the remainder, which may well
	// be an unclosed delimited stretch, becomes the last part
	if !allowCarryOver {
		s := span{start: sliceStart, end: len(buf), next: len(buf)}
		if r.trim {
			s.start, s.end = trimRange(buf, s.start, s.end)
		}
		if err = emit(s); err != nil {
			return sliceStart, err
		}
		sliceStart = len(buf)
	}

	return sliceStart, nil
}

// appendParts runs the scan over buf collecting payloads as strings.
func (r *rules) appendParts(parts []string, buf []byte, allowCarryOver bool) ([]string, int) {
	consumed, _ := r.scanSpans(buf, allowCarryOver, func(s span) error {
		parts = append(parts, string(buf[s.start:s.end]))
		return nil
	})
	return parts, consumed
}

// trimRange narrows [start:end) past leading and trailing Unicode
// whitespace, mirroring bytes.TrimSpace.
func trimRange(buf []byte, start, end int) (int, int) {
	for start < end {
		r, n := utf8.DecodeRune(buf[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += n
	}
	for end > start {
		r, n := utf8.DecodeLastRune(buf[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= n
	}
	return start, end
}
