package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestAutoDecompress(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("all work and no play makes jack a dull boy\n", 128)

	packers := map[string]func(t *testing.T) []byte{
		"gzip": func(t *testing.T) []byte {
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			_, err := io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"zstd": func(t *testing.T) []byte {
			var buf bytes.Buffer
			w, err := zstd.NewWriter(&buf)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"xz": func(t *testing.T) []byte {
			var buf bytes.Buffer
			w, err := xz.NewWriter(&buf)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
	}

	for codec, packer := range packers {
		codec, packer := codec, packer
		t.Run(codec, func(t *testing.T) {
			t.Parallel()

			r, detected, err := AutoDecompress(bytes.NewReader(packer(t)))
			require.NoError(t, err)
			require.Equal(t, codec, detected)

			plain, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, payload, string(plain))
		})
	}
}

func TestAutoDecompressPassthrough(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"plain text without any magic in front",
		"tiny", // shorter than the longest magic
		"",
	} {
		r, detected, err := AutoDecompress(strings.NewReader(input))
		require.NoError(t, err)
		require.Equal(t, "", detected)

		plain, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, input, string(plain))
	}
}
