package stringsplitter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/james-alex/string-splitter/internal/constants"
	"github.com/james-alex/string-splitter/internal/part"
	"github.com/james-alex/string-splitter/internal/preset"
	"github.com/james-alex/string-splitter/internal/preset/fields"
	"github.com/james-alex/string-splitter/internal/preset/lines"
	"github.com/james-alex/string-splitter/internal/preset/sentences"
	"github.com/james-alex/string-splitter/internal/util/argparser"
	"github.com/pborman/getopt/v2"

	"github.com/ipfs/go-qringbuf"
)

var availablePresets = map[string]preset.Initializer{
	"lines":     lines.NewPreset,
	"sentences": sentences.NewPreset,
	"fields":    fields.NewPreset,
}

// partUnit travels the ordered background-writer queue. A nil hdr marks
// a substream boundary carrying only a preformatted jsonl line.
type partUnit struct {
	_      constants.Incomparabe
	hdr    *part.Header
	region *qringbuf.Region
	stream int64
	part   int64
	jsonl  string
}

type seenParts map[[seenHashSize]byte]uniquePartStats

type Splitter struct {
	// speederization shortcut flags for internal logic
	emitSubstreams bool

	curStreamOffset     int64
	curSubstreamParts   int64
	curSubstreamPayload int64
	cfg                 config
	statSummary         statSummary
	rules               *rules
	maker               part.Maker
	formattedDigest     func(*part.Header) string
	externalEventBus    chan<- SplitEvent
	qrb                 *qringbuf.QuantizedRingBuffer
	asyncWG             sync.WaitGroup
	asyncHashingBus     part.AsyncHashingBus
	mu                  sync.Mutex
	seenParts           seenParts
	partDataQueue       chan partUnit
	partWriteError      chan error
	partDataWriter      io.Writer
}

func NewSplitter() *Splitter {
	return &Splitter{
		cfg:         defaultConfig(),
		statSummary: setStatSummary(),
	}
}

func NewSplitterFromArgv(argv []string) (spl *Splitter) {

	spl = NewSplitter()
	spl.statSummary.SysStats.ArgvInitial = getInitialArgs(argv)

	cfg := &spl.cfg
	cfg.initArgvParser()

	// accumulator for multiple errors, to present to the user all at once
	argParseErrs := argparser.Parse(argv, cfg.optSet)

	if cfg.Help || cfg.HelpAll {
		cfg.printUsage()
		os.Exit(0)
	}

	// has a default
	if cfg.HashBits < 128 || (cfg.HashBits%8) != 0 {
		argParseErrs = append(argParseErrs, fmt.Errorf("the value of --hash-bits must be a minimum of 128 and be divisible by 8"))
	}

	argParseErrs = append(argParseErrs, spl.setupScanRules()...)
	argParseErrs = append(argParseErrs, spl.setupHashing()...)
	argParseErrs = append(argParseErrs, spl.setupEmitters()...)

	// Opts check out - set up the raw part emitter
	if len(argParseErrs) == 0 && spl.cfg.emitters[emPartsRaw0] != nil {
		argParseErrs = append(argParseErrs, spl.setupRawWriting()...)
	}

	logArgParseErrors(argParseErrs, cfg)

	// Opts *still* check out - take a snapshot of what we ended up with

	// All split-determining opts come last in a predefined order
	splitOpts := []string{
		"keep-markers",
		"trim-whitespace",
		"split-on",
		"delimit",
		"delimit-open",
		"delimit-close",
		"preset",
		"hash",
		"hash-bits",
	}
	splitOptsIdx := map[string]struct{}{}
	for _, n := range splitOpts {
		splitOptsIdx[n] = struct{}{}
	}

	// first do the generic options
	cfg.optSet.VisitAll(func(o getopt.Option) {
		switch o.LongName() {
		case "help", "help-all":
			// do nothing for these
		default:
			// skip these keys too, they come next
			if _, exists := splitOptsIdx[o.LongName()]; !exists {
				spl.statSummary.SysStats.ArgvExpanded = append(
					spl.statSummary.SysStats.ArgvExpanded, fmt.Sprintf(`--%s=%s`,
						o.LongName(),
						o.Value().String(),
					),
				)
			}
		}
	})
	sort.Strings(spl.statSummary.SysStats.ArgvExpanded)

	// now do the remaining split-determining options
	for _, n := range splitOpts {
		spl.statSummary.SysStats.ArgvExpanded = append(
			spl.statSummary.SysStats.ArgvExpanded, fmt.Sprintf(`--%s=%s`,
				n,
				cfg.optSet.GetValue(n),
			),
		)
	}

	return
}

// NewSplitterWithWriters builds a splitter from the default argv plus any
// supplied extra arguments, its emitter targets pointed at the supplied
// writers instead of the process descriptors. Errors come back instead of
// exiting, making this the constructor of choice for tests and embedding.
func NewSplitterWithWriters(errStream, outStream io.Writer, extraArgv ...string) (spl *Splitter, argErrs []error) {

	spl = NewSplitter()

	cfg := &spl.cfg
	cfg.targetStderr = errStream
	cfg.targetStdout = outStream
	cfg.initArgvParser()

	// the defaults already emit stats-text on stderr and raw parts on
	// stdout, an extra argument replaces rather than augments either
	argv := append([]string{"string-splitter"}, extraArgv...)
	spl.statSummary.SysStats.ArgvInitial = getInitialArgs(argv)

	argErrs = argparser.Parse(argv, cfg.optSet)
	argErrs = append(argErrs, spl.setupScanRules()...)
	argErrs = append(argErrs, spl.setupHashing()...)
	argErrs = append(argErrs, spl.setupEmitters()...)
	if len(argErrs) == 0 && cfg.emitters[emPartsRaw0] != nil {
		argErrs = append(argErrs, spl.setupRawWriting()...)
	}

	return
}

func (spl *Splitter) Destroy() {
	spl.mu.Lock()
	if spl.asyncHashingBus != nil {
		close(spl.asyncHashingBus)
		spl.asyncHashingBus = nil
	}
	spl.qrb = nil
	spl.mu.Unlock()
}

func getInitialArgs(argv []string) []string {
	args := make([]string, len(argv))
	copy(args, argv)
	return args
}
