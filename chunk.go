package stringsplitter

import (
	"fmt"
)

// Chunk cuts text into consecutive slices of at most size bytes; the
// last one carries the remainder. Empty text yields no chunks. Panics
// when size < 1. Concatenating the result always reproduces text, so
// feeding the chunks through a Session splits identically to a
// single-shot Split.
func Chunk(text string, size int) []string {

	if size < 1 {
		panic(fmt.Sprintf("invalid chunk size %d (must be at least 1)", size))
	}
	if text == "" {
		return nil
	}

	chunks := make([]string, 0, (len(text)+size-1)/size)
	for len(text) > size {
		chunks = append(chunks, text[:size])
		text = text[size:]
	}
	return append(chunks, text)
}

// ChunkRunes is the rune-boundary-safe variant of Chunk: slices hold at
// most size runes and never bisect a multi-byte encoding, making them
// safe to display individually.
func ChunkRunes(text string, size int) []string {

	if size < 1 {
		panic(fmt.Sprintf("invalid chunk size %d (must be at least 1)", size))
	}
	if text == "" {
		return nil
	}

	var chunks []string
	start, runes := 0, 0
	for i := range text {
		if runes == size {
			chunks = append(chunks, text[start:i])
			start = i
			runes = 0
		}
		runes++
	}
	return append(chunks, text[start:])
}
