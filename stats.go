package stringsplitter

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/james-alex/string-splitter/internal/part"
	"github.com/james-alex/string-splitter/internal/util/text"

	"github.com/google/uuid"
	"github.com/ipfs/go-qringbuf"
	"github.com/klauspost/cpuid/v2"
)

const seenHashSize = 16

type uniquePartStats struct {
	sizePayload int
	seenCount   int64
}

// seenKey derives the dedup-map key from the leading digest bytes, nil
// when digesting is disabled or the digest is too short to key on.
func seenKey(hdr *part.Header) (id *[seenHashSize]byte) {
	if hdr == nil {
		return
	}
	d := hdr.Digest()
	if len(d) < seenHashSize {
		return
	}
	id = &[seenHashSize]byte{}
	copy(id[:], d[:seenHashSize])
	return
}

type statSummary struct {
	EventType string `json:"event"`
	RunID     string `json:"runID"`

	Decompressor string `json:"decompressor,omitempty"`

	Streams int64      `json:"subStreams"`
	Parts   partsStats `json:"parts"`

	Substreams []substreamStats `json:"substreamDetail,omitempty"`

	SysStats sysStats `json:"sys"`
}

type partsStats struct {
	Emitted      int64 `json:"emitted"`
	Unique       int64 `json:"unique,omitempty"`
	Empty        int64 `json:"empty"`
	PayloadBytes int64 `json:"payloadBytes"`
	MarkerBytes  int64 `json:"markerBytes"`
}

type substreamStats struct {
	Stream       int64 `json:"stream"`
	Parts        int64 `json:"parts"`
	PayloadBytes int64 `json:"payloadBytes"`
}

type sysStats struct {
	qringbuf.Stats
	ElapsedNsecs int64 `json:"elapsedNanoseconds"`

	// getrusage() deltas, gathered by the build-tagged pre/post tasks
	CpuUserNsecs int64 `json:"cpuUserNanoseconds"`
	CpuSysNsecs  int64 `json:"cpuSystemNanoseconds"`
	MaxRssBytes  int64 `json:"maxMemoryUsed"`
	MinFlt       int64 `json:"cacheMinorFaults"`
	MajFlt       int64 `json:"cacheMajorFaults"`
	BioRead      int64 `json:"blockIoReads,omitempty"`
	BioWrite     int64 `json:"blockIoWrites,omitempty"`
	Sigs         int64 `json:"signalsReceived,omitempty"`
	CtxSwYield   int64 `json:"contextSwitchYields"`
	CtxSwForced  int64 `json:"contextSwitchForced"`

	PageSize   int     `json:"pageSize"`
	GoMaxProcs int     `json:"goMaxProcs"`
	Os         string  `json:"osType"`
	CPU        cpuSpec `json:"cpu"`

	ArgvExpanded []string `json:"argvExpanded"`
	ArgvInitial  []string `json:"argvInitial"`
}

type cpuSpec struct {
	Model        string `json:"model"`
	Vendor       string `json:"vendor,omitempty"`
	LogicalCores int    `json:"logicalCores"`
	FreqMhz      int64  `json:"mhz,omitempty"`
}

func setStatSummary() statSummary {
	return statSummary{
		EventType: "summary",
		RunID:     uuid.NewString(),
		SysStats: sysStats{
			PageSize:   os.Getpagesize(),
			GoMaxProcs: runtime.GOMAXPROCS(-1),
			Os:         runtime.GOOS,
			CPU: cpuSpec{
				Model:        cpuid.CPU.BrandName,
				Vendor:       cpuid.CPU.VendorString,
				LogicalCores: cpuid.CPU.LogicalCores,
				FreqMhz:      cpuid.CPU.Hz / 1_000_000,
			},
		},
	}
}

// OutputSummary renders the stat emitters active on the config. Called
// once, after ProcessReader and Destroy.
func (spl *Splitter) OutputSummary() {

	statsTextOut := spl.cfg.emitters[emStatsText]
	statsJsonlOut := spl.cfg.emitters[emStatsJsonl]
	if statsTextOut == nil && statsJsonlOut == nil {
		return
	}

	if spl.seenParts != nil {
		spl.mu.Lock()
		spl.statSummary.Parts.Unique = int64(len(spl.seenParts))
		spl.mu.Unlock()
	}

	if statsJsonlOut != nil {
		if jsonBytes, err := json.Marshal(&spl.statSummary); err != nil {
			log.Printf("encoding of the stat summary failed: %s", err)
		} else {
			fmt.Fprintf(statsJsonlOut, "%s\n", jsonBytes)
		}
	}

	if statsTextOut == nil {
		return
	}

	s := &spl.statSummary

	var cpuTotal, cpuSys, mibPerSec float64
	if s.SysStats.ElapsedNsecs > 0 {
		cpuTotal = float64(s.SysStats.CpuUserNsecs+s.SysStats.CpuSysNsecs) / float64(s.SysStats.ElapsedNsecs)
		cpuSys = float64(s.SysStats.CpuSysNsecs) / float64(s.SysStats.ElapsedNsecs)
		mibPerSec = float64(s.Parts.PayloadBytes+s.Parts.MarkerBytes) /
			(1024 * 1024) / (float64(s.SysStats.ElapsedNsecs) / 1e9)
	}

	var unique string
	if spl.seenParts != nil {
		unique = fmt.Sprintf(", %s of them unique", text.Commify64(s.Parts.Unique))
	}

	fmt.Fprintf(statsTextOut,
		"\nProcessing took %0.2f seconds using %0.2f vCPU and %0.2f MiB of memory\n",
		float64(s.SysStats.ElapsedNsecs)/1e9,
		cpuTotal,
		float64(s.SysStats.MaxRssBytes)/(1024*1024),
	)
	fmt.Fprintf(statsTextOut,
		"Performing %s system reads using %0.2f vCPU at about %0.2f MiB/s\n",
		text.Commify64(s.SysStats.ReadCalls),
		cpuSys,
		mibPerSec,
	)
	fmt.Fprintf(statsTextOut,
		"Ingesting payload of:%17s bytes from %s substreams\n",
		text.Commify64(s.Parts.PayloadBytes),
		text.Commify64(s.Streams),
	)
	if s.Decompressor != "" {
		fmt.Fprintf(statsTextOut,
			"Decompressed on the fly from: %s\n",
			s.Decompressor,
		)
	}
	fmt.Fprintf(statsTextOut,
		"Splitting yielded:   %17s parts%s\n",
		text.Commify64(s.Parts.Emitted),
		unique,
	)
	fmt.Fprintf(statsTextOut,
		"Of them empty:       %17s parts\n",
		text.Commify64(s.Parts.Empty),
	)
	fmt.Fprintf(statsTextOut,
		"Marker overhead of:  %17s bytes\n",
		text.Commify64(s.Parts.MarkerBytes),
	)
}
