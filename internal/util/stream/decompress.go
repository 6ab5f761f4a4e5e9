package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// leading magic of the supported transparent input encodings
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicXz   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// AutoDecompress sniffs the first few bytes of the supplied stream and
// wraps it in the matching decompressor, returning the detected encoding
// name. Unrecognized input passes through untouched, aside from the bufio
// layer needed for peeking. The decompressors live for the remainder of
// the stream; nothing needs explicit closing.
func AutoDecompress(r io.Reader) (io.Reader, string, error) {

	br := bufio.NewReaderSize(r, 64*1024)

	peek, err := br.Peek(len(magicXz))
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("unable to peek at stream head: %s", err)
	}

	switch {

	case bytes.HasPrefix(peek, magicGzip):
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, "", fmt.Errorf("initializing gzip decompressor: %s", err)
		}
		return gzr, "gzip", nil

	case bytes.HasPrefix(peek, magicZstd):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, "", fmt.Errorf("initializing zstd decompressor: %s", err)
		}
		return zr.IOReadCloser(), "zstd", nil

	case bytes.HasPrefix(peek, magicXz):
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, "", fmt.Errorf("initializing xz decompressor: %s", err)
		}
		return xr, "xz", nil
	}

	return br, "", nil
}
