package fields

import (
	"github.com/james-alex/string-splitter/internal/preset"
)

type config struct {
	Separator string `getopt:"--separator=marker  Field separator, C-style escapes accepted (default: ',')"`
	NoQuoting bool   `getopt:"--no-quoting        Do not treat double-quoted stretches as opaque"`
}

type fieldsPreset struct {
	config
}

func (p *fieldsPreset) markers() preset.Bundle {
	b := preset.Bundle{Splitters: []string{p.Separator}}
	if !p.NoQuoting {
		b.Delimiters = [][2]string{{`"`, `"`}}
	}
	return b
}
