package fields

import (
	"fmt"

	"github.com/james-alex/string-splitter/internal/preset"
	"github.com/james-alex/string-splitter/internal/util/argparser"

	"github.com/pborman/getopt/v2"
	"github.com/pborman/options"
)

func NewPreset(args []string) (_ preset.Bundle, initErrs []error) {

	p := fieldsPreset{config: config{Separator: ","}}

	optSet := getopt.New()
	if err := options.RegisterSet("", &p.config, optSet); err != nil {
		initErrs = []error{fmt.Errorf("option set registration failed: %s", err)}
		return
	}

	// on nil-args the "error" is the help text to be incorporated into
	// the larger help display
	if args == nil {
		initErrs = argparser.SubHelp(
			"Splits input into separator-delimited fields, CSV-style: a field\n"+
				"wrapped in double-quotes is kept whole even when it contains the\n"+
				"separator. Combine with --trim-whitespace for ragged input.",
			optSet,
		)
		return
	}

	// bail early if getopt fails
	if initErrs = argparser.Parse(args, optSet); len(initErrs) > 0 {
		return
	}

	sep, err := argparser.Unescape(p.Separator)
	if err != nil {
		return preset.Bundle{}, []error{err}
	} else if sep == "" {
		return preset.Bundle{}, []error{fmt.Errorf("empty field separator supplied")}
	}
	p.Separator = sep

	return p.markers(), initErrs
}
