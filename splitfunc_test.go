package stringsplitter

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, cfg Config, input string, bufSize int) []string {
	t.Helper()

	splitFn, err := SplitFunc(cfg)
	require.NoError(t, err)

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, bufSize), 1024)
	scanner.Split(splitFn)

	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return tokens
}

func TestSplitFuncMatchesSplit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		cfg   Config
	}{
		{"a|b||c", Config{Splitters: []string{"|"}}},
		{"a|b|", Config{Splitters: []string{"|"}}},
		{"no markers here", Config{Splitters: []string{"|"}}},
		{"x, y; z", Config{Splitters: []string{", ", "; "}}},
		{" a | b ", Config{Splitters: []string{"|"}, TrimParts: true}},
		{"a|b|c", Config{Splitters: []string{"|"}, KeepSplitters: true}},
		{`a,"x,y",b`, Config{Splitters: []string{","}, Delimiters: []Delimiter{Symmetric(`"`)}}},
	}

	for _, tc := range testCases {
		expected, err := Split(tc.input, tc.cfg)
		require.NoError(t, err)

		for _, bufSize := range []int{2, 16, 1024} {
			tokens := scanAll(t, tc.cfg, tc.input, bufSize)
			assert.Equal(t, expected, tokens, "input %q buffer %d", tc.input, bufSize)
		}
	}
}

// The single deliberate difference to Split: empty input yields no
// tokens at all, the way bufio scanners conventionally behave.
func TestSplitFuncEmptyInput(t *testing.T) {
	t.Parallel()

	tokens := scanAll(t, Config{Splitters: []string{"|"}}, "", 16)
	assert.Empty(t, tokens)
}

func TestSplitFuncTrailingMarker(t *testing.T) {
	t.Parallel()

	// a marker consuming the last input byte still owes one empty token
	tokens := scanAll(t, Config{Splitters: []string{"\n"}}, "a\nb\n", 16)
	assert.Equal(t, []string{"a", "b", ""}, tokens)
}
