package stringsplitter

import (
	"fmt"
)

// ConfigError reports an unusable Config. Compile-time validation is the
// only failure mode of the core: scanning itself never errors.
type ConfigError string

func (e ConfigError) Error() string { return string(e) }

const (
	ErrNoSplitters    = ConfigError("at least one splitter marker is required")
	ErrEmptySplitter  = ConfigError("splitter markers must be non-empty")
	ErrEmptyDelimiter = ConfigError("delimiter markers must be non-empty")
)

// Delimiter guards a stretch of input against splitting: after an Open
// marker and until the next Close marker no splitter matching takes
// place. Identical Open and Close declare a toggling marker, the way
// shell quoting works.
type Delimiter struct {
	Open  string
	Close string
}

// Symmetric declares a delimiter whose single marker both opens and
// closes, toggling the delimited state at each occurrence.
func Symmetric(marker string) Delimiter {
	return Delimiter{Open: marker, Close: marker}
}

// Paired declares a delimiter with distinct opening and closing markers.
func Paired(open, close string) Delimiter {
	return Delimiter{Open: open, Close: close}
}

// Config carries the scan rules shared by Split, Session and SplitFunc.
// The zero value is not usable: at least one splitter is required.
type Config struct {
	// Splitters are the literal markers to split on. Declaration order
	// doubles as match priority: at any scan position the earliest
	// matching entry wins.
	Splitters []string

	// Delimiters declare opaque stretches. While the scan is inside one,
	// splitters are ignored, and any Close marker of the whole set ends
	// the stretch.
	Delimiters []Delimiter

	// KeepSplitters leaves each matched marker attached to the end of
	// its part instead of dropping it.
	KeepSplitters bool

	// TrimParts strips leading and trailing Unicode whitespace from
	// every part, applied after KeepSplitters.
	TrimParts bool
}

// Validate reports whether the config can back a scan.
func (cfg Config) Validate() error {
	_, err := cfg.compile()
	return err
}

func (cfg Config) compile() (*rules, error) {

	if len(cfg.Splitters) == 0 {
		return nil, ErrNoSplitters
	}

	r := &rules{
		splitters: make([][]byte, 0, len(cfg.Splitters)),
		keep:      cfg.KeepSplitters,
		trim:      cfg.TrimParts,
	}

	for i, s := range cfg.Splitters {
		if s == "" {
			return nil, fmt.Errorf("splitter #%d: %w", i, ErrEmptySplitter)
		}
		r.splitters = append(r.splitters, []byte(s))
	}

	for i, d := range cfg.Delimiters {
		if d.Open == "" || d.Close == "" {
			return nil, fmt.Errorf("delimiter #%d: %w", i, ErrEmptyDelimiter)
		}
		r.delimOpen = append(r.delimOpen, []byte(d.Open))
		r.delimClose = append(r.delimClose, []byte(d.Close))
	}

	return r, nil
}
