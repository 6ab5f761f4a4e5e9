package sentences

import (
	"github.com/james-alex/string-splitter/internal/preset"
)

type config struct {
	QuoteAware bool `getopt:"--quote-aware  Keep double-quoted stretches whole, ignoring punctuation inside them"`
}

type sentencesPreset struct {
	config
}

func (p *sentencesPreset) markers() preset.Bundle {
	b := preset.Bundle{Splitters: []string{". ", "! ", "? "}}
	if p.QuoteAware {
		b.Delimiters = [][2]string{{`"`, `"`}}
	}
	return b
}
