package stringsplitter

// Session splits a stream that arrives in arbitrary chunks, carrying
// unsettled bytes across chunk boundaries so that the resulting parts
// match what a single-shot Split of the whole stream would produce.
//
// The config is captured by value and recompiled on every Advance, so a
// config error surfaces on the call itself rather than at construction.
// A Session is single-writer: calls must be externally serialized.
type Session struct {
	cfg         Config
	pending     []byte
	chunkIndex  int
	totalChunks int
}

func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg}
}

// ExpectChunks arms automatic finalization: the n-th Advance is treated
// as final without the caller flagging it. Zero disarms.
func (s *Session) ExpectChunks(n int) {
	s.totalChunks = n
}

// Advance feeds the next chunk and returns the parts that became
// settled. The pending carry-over is prepended to chunk before the scan,
// so a part may have begun several chunks earlier. With final set, or
// when the ExpectChunks count is reached, the scan is terminal:
// everything settles, including the trailing remainder part, and the
// chunk counter resets so the Session can take on a new stream.
//
// A config error leaves the session state, including the chunk counter,
// untouched.
func (s *Session) Advance(chunk string, final bool) ([]string, error) {

	r, err := s.cfg.compile()
	if err != nil {
		return nil, err
	}

	s.chunkIndex++
	if s.totalChunks > 0 && s.chunkIndex >= s.totalChunks {
		final = true
	}

	buf := append(s.pending, chunk...)
	s.pending = nil

	parts, consumed := r.appendParts(nil, buf, !final)

	if final {
		s.chunkIndex = 0
	} else if consumed < len(buf) {
		// copied so neither the chunk nor the scratch buffer is retained
		s.pending = append(make([]byte, 0, len(buf)-consumed), buf[consumed:]...)
	}

	return parts, nil
}

// Close ends the stream, handing back any carried-over bytes as one last
// part. The leftover is not rescanned for markers: it is flushed as-is,
// trimmed when the rules call for it, and ok is true whenever bytes were
// pending, even if trimming emptied them. Single-shot equivalence
// therefore requires the last chunk to be advanced with final set;
// Close only salvages streams that ended unannounced.
func (s *Session) Close() (part string, ok bool) {

	pending := s.pending
	s.pending = nil
	s.chunkIndex = 0

	if len(pending) == 0 {
		return "", false
	}

	if s.cfg.TrimParts {
		lo, hi := trimRange(pending, 0, len(pending))
		pending = pending[lo:hi]
	}

	return string(pending), true
}
