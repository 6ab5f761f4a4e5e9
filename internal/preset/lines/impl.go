package lines

import (
	"github.com/james-alex/string-splitter/internal/preset"
)

type config struct {
	CRLF bool `getopt:"--crlf  Also split on Windows-style CRLF line endings"`
}

type linesPreset struct {
	config
}

func (p *linesPreset) markers() preset.Bundle {
	// listing CRLF as its own marker is what keeps the \r out of the
	// emitted parts; its order against the bare newline is immaterial,
	// the two can never match at the same position
	if p.CRLF {
		return preset.Bundle{Splitters: []string{"\r\n", "\n"}}
	}
	return preset.Bundle{Splitters: []string{"\n"}}
}
