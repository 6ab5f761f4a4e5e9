package stringsplitter

import (
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/james-alex/string-splitter/internal/constants"
	"github.com/james-alex/string-splitter/internal/part"
	"github.com/james-alex/string-splitter/internal/util/argparser"
	"github.com/james-alex/string-splitter/internal/util/stream"
	"github.com/james-alex/string-splitter/internal/util/text"

	"github.com/multiformats/go-base36"

	"github.com/pborman/getopt/v2"
	"github.com/pborman/options"
)

// where the CLI initial error messages go
var argParseErrOut io.Writer = os.Stderr

func (cfg *config) printUsage() {
	cfg.optSet.PrintUsage(argParseErrOut)
	if cfg.HelpAll || len(cfg.erroredPresets) > 0 {
		printPresetUsage(argParseErrOut, cfg.erroredPresets)
	} else {
		fmt.Fprint(argParseErrOut, "\nTry --help-all for more info\n\n")
	}
}

func printPresetUsage(out io.Writer, listPresets []string) {

	// if nothing was requested explicitly - list everything
	if len(listPresets) == 0 {
		for name, initializer := range availablePresets {
			if initializer != nil {
				listPresets = append(listPresets, name)
			}
		}
	}

	if len(listPresets) != 0 {
		fmt.Fprint(out, "\n")
		sort.Strings(listPresets)
		for _, name := range listPresets {
			fmt.Fprintf(
				out,
				"[P]reset '%s'\n",
				name,
			)
			_, h := availablePresets[name](nil)
			if len(h) == 0 {
				fmt.Fprint(out, "  -- no helptext available --\n\n")
			} else {
				helpLines := make([]string, 0, len(h))
				for _, e := range h {
					helpLines = append(helpLines, e.Error())
				}
				fmt.Fprintln(out, strings.Join(helpLines, "\n"))
			}
		}
	}

	fmt.Fprint(out, "\n")
}

func (cfg *config) initArgvParser() {
	// The default documented way of using pborman/options is to muck with globals
	// Operate over objects instead, allowing us to re-parse argv multiple times
	o := getopt.New()
	if err := options.RegisterSet("", cfg, o); err != nil {
		log.Fatalf("option set registration failed: %s", err)
	}
	cfg.optSet = o

	// program does not take freeform args
	// need to override this for sensible help render
	o.SetParameters("")

	// Several options have the help-text assembled programmatically
	o.FlagLong(&cfg.splitMarkers, "split-on", 0,
		"One or more literal markers to split on, earlier entries match first. C-style escapes accepted, use \\x2c for a literal comma",
		"comma,sep,markers",
	)
	o.FlagLong(&cfg.delimMarkers, "delimit", 0,
		"One or more symmetric delimiter markers: no splitting takes place within a delimited stretch",
		"comma,sep,markers",
	)
	o.FlagLong(&cfg.delimOpenMarkers, "delimit-open", 0,
		"Opening delimiter markers, paired positionally with --delimit-close",
		"comma,sep,markers",
	)
	o.FlagLong(&cfg.delimCloseMarkers, "delimit-close", 0,
		"Closing delimiter markers, paired positionally with --delimit-open",
		"comma,sep,markers",
	)
	o.FlagLong(&cfg.requestedPreset, "preset", 0,
		"Marker preset seeding the scan rules. One of: "+text.AvailableMapKeys(availablePresets),
		"presetname_opt1_..._optN",
	)
	o.FlagLong(&cfg.hashFunc, "hash", 0, "Part digest function to use, one of: "+text.AvailableMapKeys(part.AvailableHashers),
		"algname",
	)
	o.FlagLong(&cfg.emittersStdErr, "emit-stderr", 0, fmt.Sprintf(
		"One or more emitters to activate on stdERR. Available emitters are %s. Default: ",
		text.AvailableMapKeys(cfg.emitters),
	), "comma,sep,emitters")
	o.FlagLong(&cfg.emittersStdOut, "emit-stdout", 0,
		"One or more emitters to activate on stdOUT. Available emitters same as above. Default: ",
		"comma,sep,emitters",
	)
}

func (spl *Splitter) setupScanRules() (argErrs []error) {

	cfg := &spl.cfg

	unescapeAll := func(optName string, raw []string) (markers []string) {
		for _, r := range raw {
			m, err := argparser.Unescape(r)
			if err != nil {
				argErrs = append(argErrs, fmt.Errorf("--%s: %s", optName, err))
				continue
			}
			if m == "" {
				argErrs = append(argErrs, fmt.Errorf("empty marker specified via --%s", optName))
				continue
			}
			if len(m) > constants.MaxMarkerSize {
				argErrs = append(argErrs, fmt.Errorf(
					"marker %.32q... specified via --%s exceeds the maximum marker size of %s bytes",
					m,
					optName,
					text.Commify(constants.MaxMarkerSize),
				))
				continue
			}
			markers = append(markers, m)
		}
		return
	}

	splitters := unescapeAll("split-on", cfg.splitMarkers)

	var delims []Delimiter
	for _, m := range unescapeAll("delimit", cfg.delimMarkers) {
		delims = append(delims, Symmetric(m))
	}

	if len(cfg.delimOpenMarkers) != len(cfg.delimCloseMarkers) {
		argErrs = append(argErrs, fmt.Errorf(
			"counts of --delimit-open (%d) and --delimit-close (%d) markers must match",
			len(cfg.delimOpenMarkers),
			len(cfg.delimCloseMarkers),
		))
	} else {
		opens := unescapeAll("delimit-open", cfg.delimOpenMarkers)
		closes := unescapeAll("delimit-close", cfg.delimCloseMarkers)
		if len(opens) == len(closes) {
			for i := range opens {
				delims = append(delims, Paired(opens[i], closes[i]))
			}
		}
	}

	// an explicitly supplied marker set silences the default preset, an
	// explicitly requested preset stacks on top instead
	usePreset := cfg.requestedPreset != "" &&
		(cfg.optSet.IsSet("preset") ||
			!(cfg.optSet.IsSet("split-on") || cfg.optSet.IsSet("delimit") || cfg.optSet.IsSet("delimit-open")))

	if usePreset {
		presetArgs := strings.Split(cfg.requestedPreset, "_")
		init, exists := availablePresets[presetArgs[0]]
		if !exists {
			argErrs = append(argErrs, fmt.Errorf(
				"preset '%s' not found. Available preset names are: %s",
				presetArgs[0],
				text.AvailableMapKeys(availablePresets),
			))
		} else {
			for n := range presetArgs {
				if n > 0 {
					presetArgs[n] = "--" + presetArgs[n]
				}
			}

			bundle, initErrors := init(presetArgs)
			if len(initErrors) > 0 {
				cfg.erroredPresets = append(cfg.erroredPresets, presetArgs[0])
				for _, e := range initErrors {
					argErrs = append(argErrs, fmt.Errorf(
						"initialization of preset '%s' failed: %s",
						presetArgs[0],
						e,
					))
				}
			} else {
				// explicit markers outrank preset ones, so these append
				splitters = append(splitters, bundle.Splitters...)
				for _, pair := range bundle.Delimiters {
					delims = append(delims, Paired(pair[0], pair[1]))
				}
			}
		}
	}

	if len(argErrs) > 0 {
		return
	}

	if len(splitters) == 0 {
		return []error{fmt.Errorf(
			"no usable split markers: supply some via '--split-on=m1,m2,...' or '--preset=presetname'. Available preset names are: %s",
			text.AvailableMapKeys(availablePresets),
		)}
	}

	r, err := Config{
		Splitters:     splitters,
		Delimiters:    delims,
		KeepSplitters: cfg.KeepMarkers,
		TrimParts:     cfg.TrimWhitespace,
	}.compile()
	if err != nil {
		return []error{err}
	}
	spl.rules = r

	return
}

// Parses/creates the part maker and the digest renderer
func (spl *Splitter) setupHashing() (argErrs []error) {

	cfg := &spl.cfg

	if _, exists := part.AvailableHashers[cfg.hashFunc]; !exists {
		argErrs = append(argErrs, fmt.Errorf(
			"hash function '%s' requested via '--hash=algname' is not valid. Available hash names are %s",
			cfg.hashFunc,
			text.AvailableMapKeys(part.AvailableHashers),
		))
	} else {

		if cfg.hashFunc == "none" && !cfg.optSet.IsSet("async-hashers") {
			cfg.AsyncHashers = 0
		}

		var errStr string
		spl.maker, spl.asyncHashingBus, errStr = part.MakerFromConfig(
			cfg.hashFunc,
			cfg.HashBits/8,
			cfg.AsyncHashers,
		)
		if errStr != "" {
			argErrs = append(argErrs, errors.New(errStr))
		}
	}

	// bail if we couldn't init a part maker
	if len(argErrs) > 0 {
		return
	}

	// setup the digest formatter
	var b32Encoder *base32.Encoding
	if cfg.DigestMultibase == "base32" {
		b32Encoder = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)
	} else if cfg.DigestMultibase != "base36" {
		argErrs = append(argErrs, fmt.Errorf("unsupported digest multibase '%s'", cfg.DigestMultibase))
		return
	}

	spl.formattedDigest = func(h *part.Header) string {

		if h == nil {
			return "N/A"
		}

		d := h.Digest()
		if d == nil {
			return "N/A"
		}

		if b32Encoder != nil {
			return "b" + b32Encoder.EncodeToString(d)
		}
		return "k" + base36.EncodeToStringLc(d)
	}

	return
}

func (spl *Splitter) setupEmitters() (argErrs []error) {

	activeStderr := make(map[string]bool, len(spl.cfg.emittersStdErr))
	for _, s := range spl.cfg.emittersStdErr {
		activeStderr[s] = true
		if val, exists := spl.cfg.emitters[s]; !exists {
			argErrs = append(argErrs, fmt.Errorf("invalid emitter '%s' specified for --emit-stderr. Available emitters are: %s",
				s,
				text.AvailableMapKeys(spl.cfg.emitters),
			))
		} else if s == emNone {
			continue
		} else if val != nil {
			argErrs = append(argErrs, fmt.Errorf("emitter '%s' specified more than once", s))
		} else {
			spl.cfg.emitters[s] = spl.cfg.targetStderr
		}
	}
	activeStdout := make(map[string]bool, len(spl.cfg.emittersStdOut))
	for _, s := range spl.cfg.emittersStdOut {
		activeStdout[s] = true
		if val, exists := spl.cfg.emitters[s]; !exists {
			argErrs = append(argErrs, fmt.Errorf("invalid emitter '%s' specified for --emit-stdout. Available emitters are: %s",
				s,
				text.AvailableMapKeys(spl.cfg.emitters),
			))
		} else if s == emNone {
			continue
		} else if val != nil {
			argErrs = append(argErrs, fmt.Errorf("emitter '%s' specified more than once", s))
		} else {
			spl.cfg.emitters[s] = spl.cfg.targetStdout
		}
	}

	for _, exclusiveEmitter := range []string{
		emNone,
		emStatsText,
		emPartsRaw0,
	} {
		if activeStderr[exclusiveEmitter] && len(activeStderr) > 1 {
			argErrs = append(argErrs, fmt.Errorf(
				"when specified, emitter '%s' must be the sole argument to --emit-stderr",
				exclusiveEmitter,
			))
		}
		if activeStdout[exclusiveEmitter] && len(activeStdout) > 1 {
			argErrs = append(argErrs, fmt.Errorf(
				"when specified, emitter '%s' must be the sole argument to --emit-stdout",
				exclusiveEmitter,
			))
		}
	}

	// set shortcuts based on emitter config
	spl.emitSubstreams = spl.cfg.emitters[emPartsJsonl] != nil

	return
}

func (spl *Splitter) setupRawWriting() (argErrs []error) {

	if stream.IsTTY(spl.cfg.emitters[emPartsRaw0]) {
		argErrs = append(argErrs, fmt.Errorf("output of raw NUL-terminated parts to a TTY is not supported"))
	}

	if len(argErrs) > 0 {
		return
	}

	spl.partDataWriter = spl.cfg.emitters[emPartsRaw0]

	return
}

func logArgParseErrors(errs []error, cfg *config) {

	if len(errs) == 0 {
		return
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	sort.Strings(msgs)

	fmt.Fprint(argParseErrOut, "\nFatal error parsing arguments:\n\n")
	for _, m := range msgs {
		fmt.Fprintf(argParseErrOut, "  %s\n", m)
	}
	fmt.Fprint(argParseErrOut, "\n")

	cfg.printUsage()
	os.Exit(2)
}
