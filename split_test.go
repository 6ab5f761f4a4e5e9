package stringsplitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		cfg      Config
		expected []string
	}{
		{
			name:     "single marker",
			input:    "1/ 2/ 3/ 4/ 5/ 6/ 7/ 8",
			cfg:      Config{Splitters: []string{"/ "}},
			expected: []string{"1", "2", "3", "4", "5", "6", "7", "8"},
		},
		{
			name:     "adjacent markers yield empty parts",
			input:    "a|b||c",
			cfg:      Config{Splitters: []string{"|"}},
			expected: []string{"a", "b", "", "c"},
		},
		{
			name:     "empty input is a single empty part",
			input:    "",
			cfg:      Config{Splitters: []string{"|"}},
			expected: []string{""},
		},
		{
			name:     "marker-less input comes back whole",
			input:    "abc",
			cfg:      Config{Splitters: []string{"|"}},
			expected: []string{"abc"},
		},
		{
			name:     "trailing marker yields a trailing empty part",
			input:    "a|",
			cfg:      Config{Splitters: []string{"|"}},
			expected: []string{"a", ""},
		},
		{
			name:     "leading marker yields a leading empty part",
			input:    "|a",
			cfg:      Config{Splitters: []string{"|"}},
			expected: []string{"", "a"},
		},
		{
			name:     "declaration order wins at a shared position",
			input:    "xaby",
			cfg:      Config{Splitters: []string{"ab", "a"}},
			expected: []string{"x", "y"},
		},
		{
			name:     "declaration order wins at a shared position, reversed",
			input:    "xaby",
			cfg:      Config{Splitters: []string{"a", "ab"}},
			expected: []string{"x", "by"},
		},
		{
			name:     "crlf before bare newline",
			input:    "a\r\nb\nc",
			cfg:      Config{Splitters: []string{"\r\n", "\n"}},
			expected: []string{"a", "b", "c"},
		},
		{
			// \n and \r\n start on different bytes so they never compete
			// for the same position: their relative order cannot matter
			name:     "bare newline before crlf splits identically",
			input:    "a\r\nb\nc",
			cfg:      Config{Splitters: []string{"\n", "\r\n"}},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "markers kept on request",
			input:    "a|b",
			cfg:      Config{Splitters: []string{"|"}, KeepSplitters: true},
			expected: []string{"a|", "b"},
		},
		{
			name:     "whitespace trimmed on request",
			input:    " a | b ",
			cfg:      Config{Splitters: []string{"|"}, TrimParts: true},
			expected: []string{"a", "b"},
		},
		{
			name:     "unicode whitespace trimmed too",
			input:    " a |\tb\n",
			cfg:      Config{Splitters: []string{"|"}, TrimParts: true},
			expected: []string{"a", "b"},
		},
		{
			name:     "trim applies after keep",
			input:    "a | b",
			cfg:      Config{Splitters: []string{"|"}, KeepSplitters: true, TrimParts: true},
			expected: []string{"a |", "b"},
		},
		{
			name:     "symmetric delimiter shields its stretch",
			input:    `a,"x,y",b`,
			cfg:      Config{Splitters: []string{","}, Delimiters: []Delimiter{Symmetric(`"`)}},
			expected: []string{"a", `"x,y"`, "b"},
		},
		{
			name:     "unbalanced delimiter runs to the end",
			input:    `a,"x,y`,
			cfg:      Config{Splitters: []string{","}, Delimiters: []Delimiter{Symmetric(`"`)}},
			expected: []string{"a", `"x,y`},
		},
		{
			name:     "paired delimiter",
			input:    "f(a,b),c",
			cfg:      Config{Splitters: []string{","}, Delimiters: []Delimiter{Paired("(", ")")}},
			expected: []string{"f(a,b)", "c"},
		},
		{
			name:  "any close marker ends any delimited stretch",
			input: "a,<x]y>,b",
			cfg: Config{
				Splitters:  []string{","},
				Delimiters: []Delimiter{Paired("<", ">"), Paired("[", "]")},
			},
			expected: []string{"a", "<x]y>", "b"},
		},
		{
			name:  "delimiter openers outrank splitters",
			input: "a,,b!c,d",
			cfg: Config{
				Splitters:  []string{","},
				Delimiters: []Delimiter{Paired(",,", "!")},
			},
			expected: []string{"a,,b!c", "d"},
		},
		{
			name:     "multiple splitters cooperate",
			input:    "one, two; three",
			cfg:      Config{Splitters: []string{", ", "; "}},
			expected: []string{"one", "two", "three"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			parts, err := Split(tc.input, tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, parts)
		})
	}
}

// With markers kept and trimming off, concatenating the parts always
// reconstructs the input byte for byte.
func TestSplitIsLossless(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Splitters:     []string{", ", ",", "\n"},
		Delimiters:    []Delimiter{Symmetric(`"`)},
		KeepSplitters: true,
	}

	for _, input := range []string{
		"",
		"plain",
		"a, b,c\nd",
		`quoted "a, b" tail, rest`,
		`dangling "a, b`,
		",leading and trailing,",
	} {
		parts, err := Split(input, cfg)
		require.NoError(t, err)
		assert.Equal(t, input, strings.Join(parts, ""), "input %q", input)
	}
}
