package stringsplitter

import (
	"io"
	"os"
	"runtime"

	"github.com/pborman/getopt/v2"
)

const (
	statsParts = 1 << iota
	statsRingbuf
)

type emissionTargets map[string]io.Writer

const (
	emNone       = "none"
	emStatsText  = "stats-text"
	emStatsJsonl = "stats-jsonl"
	emPartsJsonl = "parts-jsonl"
	emPartsRaw0  = "parts-raw-0"
)

type config struct {
	optSet *getopt.Set

	// where to output
	emitters emissionTargets

	// descriptor stand-ins, swappable for tests
	targetStderr io.Writer
	targetStdout io.Writer

	//
	// Bulk of CLI options definition starts here, the rest further down in initArgvParser()
	//

	Help            bool `getopt:"-h --help         Display basic help"`
	HelpAll         bool `getopt:"--help-all        Display full help including sub-options for every currently supported preset"`
	MultipartStream bool `getopt:"--multipart       Expect multiple SInt64BE-size-prefixed sub-streams on stdIN"`
	SkipNulInputs   bool `getopt:"--skip-nul-inputs Instead of emitting a single empty part, skip zero-length (sub)streams outright"`
	AutoDecompress  bool `getopt:"--auto-decompress Sniff stdIN for gzip/zstd/xz magic and transparently decompress before splitting. Applies to the stream as a whole, multipart framing included"`
	KeepMarkers     bool `getopt:"--keep-markers    Keep each matched split marker attached to the end of its part instead of dropping it"`
	TrimWhitespace  bool `getopt:"--trim-whitespace Strip leading and trailing Unicode whitespace from every emitted part"`

	emittersStdErr []string // Emitter spec: option/helptext in initArgvParser()
	emittersStdOut []string // Emitter spec: option/helptext in initArgvParser()

	splitMarkers      []string // Scan rules: options/helptexts in initArgvParser()
	delimMarkers      []string
	delimOpenMarkers  []string
	delimCloseMarkers []string

	// no-option-attached, this is an instantiation error accumulator
	erroredPresets []string

	AsyncHashers       int `getopt:"--async-hashers=integer         Number of concurrent goroutines performing part digestion. Set to 0 (disable) for predictable benchmarking. Default:"`
	RingBufferSize     int `getopt:"--ring-buffer-size=bytes        The size of the quantized ring buffer used for ingestion. Default:"`
	RingBufferSectSize int `getopt:"--ring-buffer-sync-size=bytes   (EXPERT SETTING) The size of each buffer synchronization sector. Default:"` // option vaguely named 'sync' to not confuse users
	RingBufferMinRead  int `getopt:"--ring-buffer-min-sysread=bytes (EXPERT SETTING) Perform next read(2) only when the specified amount of free space is available in the buffer. Default:"`

	StatsActive uint `getopt:"--stats-active=uint   A bitfield representing activated stat aggregations: bit0:PartSizing, bit1:RingbufferTiming. Default:"`

	HashBits        int    `getopt:"--hash-bits=integer       Amount of bits taken from *start* of the digest output. Default:"`
	DigestMultibase string `getopt:"--digest-multibase=string Use this multibase when rendering part digests for output. One of 'base32', 'base36'. Default:"`
	hashFunc        string // hash function to use: option/helptext in initArgvParser()

	requestedPreset string // Preset: option/helptext in initArgvParser()
}

func defaultConfig() config {
	return config{
		targetStderr: os.Stderr,
		targetStdout: os.Stdout,

		emitters: emissionTargets{
			emNone:       nil,
			emStatsText:  nil,
			emStatsJsonl: nil,
			emPartsJsonl: nil,
			emPartsRaw0:  nil,
		},
		emittersStdErr: []string{emStatsText},
		emittersStdOut: []string{emPartsRaw0},

		requestedPreset: "lines",
		hashFunc:        "sha2-256",
		HashBits:        256,
		DigestMultibase: "base36",
		AsyncHashers:    runtime.NumCPU(),

		StatsActive: statsParts,

		// SANCHECK: these defaults have not really been tuned
		RingBufferSize:     24 * 1024 * 1024,
		RingBufferSectSize: 65536,
		RingBufferMinRead:  4096,
	}
}
