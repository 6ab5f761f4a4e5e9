package preset

import (
	"github.com/james-alex/string-splitter/internal/constants"
)

// Bundle is the marker set a preset contributes to the scan rules.
// Splitters keep their declaration order: it doubles as match priority.
type Bundle struct {
	_          constants.Incomparabe
	Splitters  []string
	Delimiters [][2]string
}

type Initializer func(
	presetCLISubArgs []string,
) (
	markers Bundle,
	initErrorStrings []error,
)
