package stringsplitter

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/james-alex/string-splitter/internal/constants"
	"github.com/james-alex/string-splitter/internal/part"
	"github.com/james-alex/string-splitter/internal/util/stream"
	"github.com/james-alex/string-splitter/internal/util/text"

	"github.com/ipfs/go-qringbuf"
)

type SplitEventType int

const (
	ErrorString = SplitEventType(iota)
	NewSubstreamJsonl
)

type SplitEvent struct {
	_    constants.Incomparabe
	Type SplitEventType
	Body string
}

const partQueueSize = 2048

var nulSep = []byte{0}

// hooks for platform-specific rusage accounting, set from build-tagged files
var preProcessTasks, postProcessTasks func(spl *Splitter)

func (spl *Splitter) maybeSendEvent(t SplitEventType, s string) {
	if spl.externalEventBus != nil {
		spl.externalEventBus <- SplitEvent{Type: t, Body: s}
	}
}

// ProcessReader consumes inputReader to its end, emitting parts on the
// configured emitters as they are recognized. If optionalEventChan is
// supplied it receives out-of-band events and is closed on return.
func (spl *Splitter) ProcessReader(inputReader io.Reader, optionalEventChan chan<- SplitEvent) (defErr error) {

	deferErrors := make(chan error, 1)

	// only the first encountered error is reported
	addErr := func(maybeErr error) {
		if maybeErr != nil {
			spl.maybeSendEvent(ErrorString, maybeErr.Error())
			select {
			case deferErrors <- maybeErr:
			default:
			}
		}
	}

	var t0 time.Time

	defer func() {

		// race against the async workers is a data corruption waiting to happen
		spl.asyncWG.Wait()

		if spl.partDataQueue != nil {
			close(spl.partDataQueue)
			addErr(<-spl.partWriteError)
			spl.partDataQueue = nil
		}

		if defErr == nil && len(deferErrors) > 0 {
			defErr = <-deferErrors
		}

		if postProcessTasks != nil {
			postProcessTasks(spl)
		}

		spl.qrb = nil

		if spl.externalEventBus != nil {
			close(spl.externalEventBus)
			spl.externalEventBus = nil
		}

		spl.statSummary.SysStats.ElapsedNsecs = time.Since(t0).Nanoseconds()
	}()

	defer func() {
		if defErr != nil {
			var buffered int
			if spl.qrb != nil {
				spl.qrb.Lock()
				buffered = spl.qrb.Buffered()
				spl.qrb.Unlock()
			}
			defErr = fmt.Errorf(
				"failure at byte offset %s of sub-stream #%d with %s bytes buffered/unprocessed: %s",
				text.Commify64(spl.curStreamOffset),
				spl.statSummary.Streams,
				text.Commify(buffered),
				defErr,
			)

			spl.maybeSendEvent(ErrorString, defErr.Error())
		}
	}()

	spl.externalEventBus = optionalEventChan

	if preProcessTasks != nil {
		preProcessTasks(spl)
	}
	t0 = time.Now()

	// decompression wraps the raw input before both the ring buffer and
	// any multipart framing
	if spl.cfg.AutoDecompress {
		var codec string
		inputReader, codec, defErr = stream.AutoDecompress(inputReader)
		if defErr != nil {
			return defErr
		}
		spl.statSummary.Decompressor = codec
	}

	var err error
	spl.qrb, err = qringbuf.NewFromReader(inputReader, qringbuf.Config{
		// MinRegion must be twice the maximum part payload so that the
		// carried-over tail of one scan and a full fresh read both fit
		MinRegion:   2 * constants.MaxPartPayloadSize,
		MinRead:     spl.cfg.RingBufferMinRead,
		MaxCopy:     2 * constants.MaxPartPayloadSize,
		BufferSize:  spl.cfg.RingBufferSize,
		SectorSize:  spl.cfg.RingBufferSectSize,
		Stats:       &spl.statSummary.SysStats.Stats,
		TrackTiming: (spl.cfg.StatsActive & statsRingbuf) == statsRingbuf,
	})
	if err != nil {
		return err
	}

	if (spl.cfg.StatsActive & statsParts) == statsParts {
		spl.seenParts = make(seenParts, 1024)
	}

	if spl.cfg.emitters[emPartsJsonl] != nil || spl.cfg.emitters[emPartsRaw0] != nil {
		spl.partDataQueue = make(chan partUnit, partQueueSize)
		spl.partWriteError = make(chan error, 1)
		go spl.backgroundPartWriter()
	}

	if !spl.cfg.MultipartStream {

		spl.statSummary.Streams = 1

		if err := spl.processStream(0); err != nil && err != io.EOF {
			return err
		}

		// a zero-length input still yields exactly one empty part
		if spl.curStreamOffset == 0 && !spl.cfg.SkipNulInputs {
			spl.partAppend(nil, 0)
		}

		return nil
	}

	// multipart mode: a stream of 8-byte BigEndian substream sizes, each
	// followed by that many bytes of payload. The prefix reads come from the
	// input itself: a limited StartFill never consumes past its substream,
	// leaving the reader positioned at the next prefix
	var substreamSize int64
	for {

		err := binary.Read(inputReader, binary.BigEndian, &substreamSize)
		spl.statSummary.SysStats.ReadCalls++
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("error reading next 8-byte multipart substream size: %s", err)
		}

		if substreamSize == 0 && spl.cfg.SkipNulInputs {
			continue
		}

		spl.statSummary.Streams++
		spl.curStreamOffset = 0

		if substreamSize == 0 {
			// we got past the SkipNulInputs check above: the zero-length
			// substream emits its single empty part with no ring fill, a
			// StartFill(0) would instead mean "read until EOF"
			spl.partAppend(nil, 0)
		} else if err := spl.processStream(substreamSize); err != nil {
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf(
					"unexpected end of substream #%s after %s bytes (stream expected to be %s bytes long)",
					text.Commify64(spl.statSummary.Streams),
					text.Commify64(spl.curStreamOffset+int64(spl.qrb.Buffered())),
					text.Commify64(substreamSize),
				)
			} else if err != io.EOF {
				return err
			} else if spl.curStreamOffset == 0 && !spl.cfg.SkipNulInputs {
				spl.partAppend(nil, 0)
			}
		}

		if spl.emitSubstreams || spl.seenParts != nil || spl.externalEventBus != nil {

			jsonl := fmt.Sprintf(
				"{\"event\":   \"substream\", \"payload\":%12d, \"stream\":%7d, \"parts\":%9d }\n",
				spl.curSubstreamPayload,
				spl.statSummary.Streams,
				spl.curSubstreamParts,
			)

			if spl.emitSubstreams {
				// the sentinel rides the part queue, keeping boundary
				// lines ordered against the part lines around them
				spl.partDataQueue <- partUnit{
					stream: spl.statSummary.Streams,
					jsonl:  jsonl,
				}
			}

			spl.maybeSendEvent(NewSubstreamJsonl, jsonl)

			if spl.seenParts != nil {
				spl.mu.Lock()
				spl.statSummary.Substreams = append(spl.statSummary.Substreams, substreamStats{
					Stream:       spl.statSummary.Streams,
					Parts:        spl.curSubstreamParts,
					PayloadBytes: spl.curSubstreamPayload,
				})
				spl.mu.Unlock()
			}
		}

		spl.curSubstreamParts = 0
		spl.curSubstreamPayload = 0
	}

	return nil
}

func (spl *Splitter) processStream(streamLimit int64) error {

	if err := spl.qrb.StartFill(streamLimit); err != nil {
		return err
	}

	var availableFromReader, processedFromReader int
	var workRegion *qringbuf.Region
	var readErr error

	for {

		spl.curStreamOffset += int64(processedFromReader)

		workRegion, readErr = spl.qrb.NextRegion(availableFromReader - processedFromReader)

		// a nil region is drain-end: the call just retired the last held
		// region, rearming the ring for another StartFill
		if workRegion == nil || (readErr != nil && readErr != io.EOF) {
			return readErr
		}

		availableFromReader = workRegion.Size()
		buf := workRegion.Bytes()

		var err error
		processedFromReader, err = spl.rules.scanSpans(buf, readErr != io.EOF, func(s span) error {

			var dataRegion *qringbuf.Region
			if s.end > s.start {
				dataRegion = workRegion.SubRegion(s.start, s.end-s.start)
				dataRegion.Reserve()
			}

			spl.partAppend(dataRegion, s.markerLen)
			return nil
		})
		if err != nil {
			return err
		}

		// a scan that retires nothing while a full window is buffered can
		// never make progress
		if processedFromReader == 0 && readErr != io.EOF &&
			availableFromReader >= constants.MaxPartPayloadSize {
			return fmt.Errorf(
				"unable to find a marker within %s buffered bytes: either a single part exceeds the maximum of %s bytes or a delimiter is left unclosed",
				text.Commify(availableFromReader),
				text.Commify(constants.MaxPartPayloadSize),
			)
		}
	}
}

// partAppend turns a scanned region (nil for an empty part) into a part
// header, accounts for it, and hands it to the emission pipeline. Runs on
// the stream-processing goroutine: the queue send order is the scan order.
func (spl *Splitter) partAppend(dataRegion *qringbuf.Region, markerLen int) {

	var payload []byte
	if dataRegion != nil {
		payload = dataRegion.Bytes()
	}

	spl.curSubstreamParts++
	spl.curSubstreamPayload += int64(len(payload))
	spl.statSummary.Parts.PayloadBytes += int64(len(payload))
	spl.statSummary.Parts.MarkerBytes += int64(markerLen)

	hdr := spl.maker(payload, markerLen)

	regionForPostProcessor := dataRegion

	if spl.partDataQueue != nil {
		spl.partDataQueue <- partUnit{
			hdr:    hdr,
			region: dataRegion,
			stream: spl.statSummary.Streams,
			part:   spl.curSubstreamParts,
		}
		// the writer owns the region lifetime now
		regionForPostProcessor = nil
	}

	spl.asyncWG.Add(1)
	go spl.postProcessPart(hdr, regionForPostProcessor)
}

func (spl *Splitter) postProcessPart(hdr *part.Header, dataRegion *qringbuf.Region) {

	defer spl.asyncWG.Done()

	if constants.PerformSanityChecks {
		if hdr == nil {
			log.Panic("unexpected nil part header")
		} else if hdr.SizeOverhead() > constants.MaxMarkerSize {
			log.Panicf(
				"a marker of %s bytes exceeds the %s byte maximum",
				text.Commify(hdr.SizeOverhead()),
				text.Commify(constants.MaxMarkerSize),
			)
		}
	}

	atomic.AddInt64(&spl.statSummary.Parts.Emitted, 1)
	if hdr.SizePayload() == 0 {
		atomic.AddInt64(&spl.statSummary.Parts.Empty, 1)
	}

	// with an active background writer both the dedup map and the region
	// lifetime belong to the writer
	if spl.partDataQueue != nil {
		return
	}

	if spl.seenParts != nil {
		if k := seenKey(hdr); k != nil {
			spl.mu.Lock()
			seen := spl.seenParts[*k]
			seen.seenCount++
			seen.sizePayload = hdr.SizePayload()
			spl.seenParts[*k] = seen
			spl.mu.Unlock()
		}
	}

	if dataRegion != nil {
		// the async hashers read the payload in place: the digest must be
		// resolved before the region is handed back to the ring
		hdr.Digest()
		hdr.EvictPayload()
		dataRegion.Release()
	}
}

// backgroundPartWriter is the sole writer of part payloads and jsonl part
// lines, preserving scan order regardless of hashing concurrency. After a
// write failure it keeps draining: digests must still be resolved and
// regions handed back, and an abandoned queue would stall the producer
// once it fills. Only the first failure is reported.
func (spl *Splitter) backgroundPartWriter() {

	defer close(spl.partWriteError)

	jsonlOut := spl.cfg.emitters[emPartsJsonl]
	rawOut := spl.partDataWriter

	var wErr error

	for pu := range spl.partDataQueue {

		// a nil header marks a substream boundary
		if pu.hdr == nil {
			if wErr == nil && jsonlOut != nil {
				if _, err := io.WriteString(jsonlOut, pu.jsonl); err != nil {
					wErr = err
				}
			}
			continue
		}

		// the digest must be resolved before the region is handed back:
		// the async hashers read the payload in place
		pu.hdr.Digest()

		var dup bool
		if spl.seenParts != nil {
			if k := seenKey(pu.hdr); k != nil {
				spl.mu.Lock()
				seen := spl.seenParts[*k]
				seen.seenCount++
				seen.sizePayload = pu.hdr.SizePayload()
				spl.seenParts[*k] = seen
				dup = seen.seenCount > 1
				spl.mu.Unlock()
			}
		}

		if wErr == nil && rawOut != nil {
			if _, wErr = rawOut.Write(pu.hdr.Payload()); wErr == nil {
				_, wErr = rawOut.Write(nulSep)
			}
		}
		if wErr == nil && jsonlOut != nil {
			var dupTag string
			if dup {
				dupTag = ", \"dup\":true"
			}
			_, wErr = fmt.Fprintf(jsonlOut,
				"{\"event\":   \"part\", \"payload\":%12d, \"stream\":%7d, \"part\":%9d, %-67s%s }\n",
				pu.hdr.SizePayload(),
				pu.stream,
				pu.part,
				fmt.Sprintf("\"digest\":\"%s\"", spl.formattedDigest(pu.hdr)),
				dupTag,
			)
		}

		pu.hdr.EvictPayload()
		if pu.region != nil {
			pu.region.Release()
		}
	}

	if wErr != nil {
		spl.partWriteError <- wErr
	}
}
