package stringsplitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advanceAll(t *testing.T, cfg Config, chunks []string) []string {
	t.Helper()

	ses := NewSession(cfg)
	var parts []string
	for i, chunk := range chunks {
		batch, err := ses.Advance(chunk, i == len(chunks)-1)
		require.NoError(t, err)
		parts = append(parts, batch...)
	}
	return parts
}

func TestSessionCarryOver(t *testing.T) {
	t.Parallel()

	ses := NewSession(Config{Splitters: []string{","}})

	parts, err := ses.Advance("alpha,bet", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, parts)

	// the comma sits on the chunk edge: a longer marker could still
	// straddle it, so nothing settles yet
	parts, err = ses.Advance("a,", false)
	require.NoError(t, err)
	assert.Empty(t, parts)

	parts, err = ses.Advance("gamma", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma"}, parts)
}

func TestSessionStraddlingMarker(t *testing.T) {
	t.Parallel()

	ses := NewSession(Config{Splitters: []string{"bc"}})

	parts, err := ses.Advance("ab", false)
	require.NoError(t, err)
	assert.Empty(t, parts)

	parts, err = ses.Advance("cd", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, parts)
}

// Every way of chunking an input must yield the parts of a single-shot
// split of the whole input.
func TestSessionChunkingInvariance(t *testing.T) {
	t.Parallel()

	configs := []Config{
		{Splitters: []string{"|"}},
		{Splitters: []string{"|"}, KeepSplitters: true},
		{Splitters: []string{"|"}, TrimParts: true},
		{Splitters: []string{"\r\n", "\n"}},
		{Splitters: []string{","}, Delimiters: []Delimiter{Symmetric(`"`)}},
	}

	inputs := []string{
		"",
		"abc",
		"a|b||c|",
		"|x|",
		" a | b ",
		"l1\r\nl2\nl3\r\n",
		`q,"x,y",z`,
		`q,"x,y`,
	}

	for _, cfg := range configs {
		for _, input := range inputs {

			reference, err := Split(input, cfg)
			require.NoError(t, err)

			for cut1 := 0; cut1 <= len(input); cut1++ {
				chunked := advanceAll(t, cfg, []string{input[:cut1], input[cut1:]})
				assert.Equal(t, reference, chunked, "input %q cut at %d", input, cut1)

				for cut2 := cut1; cut2 <= len(input); cut2++ {
					chunked = advanceAll(t, cfg, []string{input[:cut1], input[cut1:cut2], input[cut2:]})
					assert.Equal(t, reference, chunked, "input %q cut at %d and %d", input, cut1, cut2)
				}
			}
		}
	}
}

// When two splitters match at the same position and one is a prefix of
// the other, a chunk edge between their lengths settles the shorter one
// eagerly: the scan does not wait to disambiguate against the longer
// alternative. This is the one known departure from chunking invariance.
func TestSamePositionPrefixMarkersAcrossChunks(t *testing.T) {
	t.Parallel()

	cfg := Config{Splitters: []string{"ab", "a"}}

	singleShot, err := Split("xaby", cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, singleShot)

	chunked := advanceAll(t, cfg, []string{"xab", "y"})
	assert.Equal(t, []string{"x", "by"}, chunked)
}

func TestSessionClose(t *testing.T) {
	t.Parallel()

	ses := NewSession(Config{Splitters: []string{","}})

	// nothing pending
	part, ok := ses.Close()
	assert.False(t, ok)
	assert.Equal(t, "", part)

	parts, err := ses.Advance("tail", false)
	require.NoError(t, err)
	require.Empty(t, parts)

	part, ok = ses.Close()
	assert.True(t, ok)
	assert.Equal(t, "tail", part)

	// the flush is one-shot
	_, ok = ses.Close()
	assert.False(t, ok)

	// a final Advance leaves nothing behind for Close
	ses = NewSession(Config{Splitters: []string{","}})
	_, err = ses.Advance("a,b", true)
	require.NoError(t, err)
	_, ok = ses.Close()
	assert.False(t, ok)

	// trimming may empty the flushed part, it still counts as present
	ses = NewSession(Config{Splitters: []string{","}, TrimParts: true})
	_, err = ses.Advance("   ", false)
	require.NoError(t, err)
	part, ok = ses.Close()
	assert.True(t, ok)
	assert.Equal(t, "", part)
}

func TestSessionExpectChunks(t *testing.T) {
	t.Parallel()

	ses := NewSession(Config{Splitters: []string{"|"}})
	ses.ExpectChunks(2)

	parts, err := ses.Advance("a|b", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, parts)

	// second of two announced chunks finalizes on its own
	parts, err = ses.Advance("|c", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, parts)

	// the counter reset makes the armed session reusable as-is; the
	// marker on the chunk edge settles only on the finalizing call
	parts, err = ses.Advance("x|", false)
	require.NoError(t, err)
	assert.Empty(t, parts)
	parts, err = ses.Advance("y", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, parts)

	// zero disarms
	ses.ExpectChunks(0)
	parts, err = ses.Advance("p|q", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, parts)
	part, ok := ses.Close()
	assert.True(t, ok)
	assert.Equal(t, "q", part)
}

func TestSessionConfigErrorLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	ses := NewSession(Config{Splitters: []string{"|"}})
	parts, err := ses.Advance("pending", false)
	require.NoError(t, err)
	require.Empty(t, parts)

	// sabotage through the captured value is impossible, so exercise the
	// error path on a fresh session and verify nothing advances
	broken := NewSession(Config{})
	_, err = broken.Advance("x", false)
	require.ErrorIs(t, err, ErrNoSplitters)
	assert.Zero(t, broken.chunkIndex)
	assert.Nil(t, broken.pending)

	_, err = broken.Advance("y", true)
	require.ErrorIs(t, err, ErrNoSplitters)
	assert.Zero(t, broken.chunkIndex)
}
