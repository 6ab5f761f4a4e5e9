package part

import (
	"fmt"
	"hash"

	"github.com/james-alex/string-splitter/internal/util/text"

	sha256 "github.com/minio/sha256-simd"
	"github.com/twmb/murmur3"
	"golang.org/x/crypto/blake2b"
)

// Header describes one split part on its way out of the engine. The payload
// points into the ingestion ring and is only valid until the owning region
// is released: consumers must resolve Digest() before evicting.
type Header struct {
	sizePayload  int
	sizeOverhead int
	payload      []byte
	digest       []byte
	digestDone   chan struct{}
}

func (h *Header) SizePayload() int  { return h.sizePayload }
func (h *Header) SizeOverhead() int { return h.sizeOverhead }
func (h *Header) Payload() []byte   { return h.payload }

// Digest blocks until the (possibly asynchronous) hashing completes.
// Returns nil when hashing is disabled.
func (h *Header) Digest() []byte {
	<-h.digestDone
	return h.digest
}

// EvictPayload drops the ring reference once the consumer is done with it.
func (h *Header) EvictPayload() { h.payload = nil }

type hasherFactory func() hash.Hash

var AvailableHashers = map[string]hasherFactory{
	"none":     nil,
	"sha2-256": sha256.New,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil) // keyless blake2b can not fail
		return h
	},
	"murmur3-128": func() hash.Hash { return murmur3.New128() },
}

type Maker func(payload []byte, overheadBytes int) *Header

type AsyncHashingBus chan<- *Header

var digestlessDone = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// MakerFromConfig assembles the part constructor for the requested hash
// function. With asyncHashers > 0 the returned bus feeds that many
// long-lived digest workers; the caller owns the bus and must close it
// once no further parts will be made.
func MakerFromConfig(hashAlg string, digestBytes int, asyncHashers int) (maker Maker, bus AsyncHashingBus, errString string) {

	hf, exists := AvailableHashers[hashAlg]
	if !exists {
		return nil, nil, fmt.Sprintf(
			"invalid hash function '%s'. Available hash names are %s",
			hashAlg,
			text.AvailableMapKeys(AvailableHashers),
		)
	}

	if asyncHashers < 0 {
		return nil, nil, fmt.Sprintf("invalid negative amount of async hashers %d", asyncHashers)
	}

	if hf == nil {
		// digest-less operation: headers are born complete
		return func(payload []byte, overheadBytes int) *Header {
			return &Header{
				sizePayload:  len(payload),
				sizeOverhead: overheadBytes,
				payload:      payload,
				digestDone:   digestlessDone,
			}
		}, nil, ""
	}

	if maxBytes := hf().Size(); digestBytes > maxBytes {
		return nil, nil, fmt.Sprintf(
			"hasher '%s' produces only %d bits, can not truncate to the requested %d",
			hashAlg,
			maxBytes*8,
			digestBytes*8,
		)
	}

	if asyncHashers == 0 {
		return func(payload []byte, overheadBytes int) *Header {
			h := hf()
			h.Write(payload)
			return &Header{
				sizePayload:  len(payload),
				sizeOverhead: overheadBytes,
				payload:      payload,
				digest:       h.Sum(make([]byte, 0, h.Size()))[:digestBytes],
				digestDone:   digestlessDone,
			}
		}, nil, ""
	}

	q := make(chan *Header, 4*asyncHashers)
	for i := 0; i < asyncHashers; i++ {
		go func() {
			h := hf()
			for hdr := range q {
				h.Reset()
				h.Write(hdr.payload)
				hdr.digest = h.Sum(make([]byte, 0, h.Size()))[:digestBytes]
				close(hdr.digestDone)
			}
		}()
	}

	return func(payload []byte, overheadBytes int) *Header {
		hdr := &Header{
			sizePayload:  len(payload),
			sizeOverhead: overheadBytes,
			payload:      payload,
			digestDone:   make(chan struct{}),
		}
		q <- hdr
		return hdr
	}, q, ""
}
