package sentences

import (
	"fmt"

	"github.com/james-alex/string-splitter/internal/preset"
	"github.com/james-alex/string-splitter/internal/util/argparser"

	"github.com/pborman/getopt/v2"
	"github.com/pborman/options"
)

func NewPreset(args []string) (_ preset.Bundle, initErrs []error) {

	p := sentencesPreset{}

	optSet := getopt.New()
	if err := options.RegisterSet("", &p.config, optSet); err != nil {
		initErrs = []error{fmt.Errorf("option set registration failed: %s", err)}
		return
	}

	// on nil-args the "error" is the help text to be incorporated into
	// the larger help display
	if args == nil {
		initErrs = argparser.SubHelp(
			"Splits prose into sentences on terminal punctuation followed by a\n"+
				"space ('. ', '! ', '? '). Abbreviation detection is out of scope:\n"+
				"'e.g. thus' splits the same way any other dotted text does.",
			optSet,
		)
		return
	}

	// bail early if getopt fails
	if initErrs = argparser.Parse(args, optSet); len(initErrs) > 0 {
		return
	}

	return p.markers(), initErrs
}
