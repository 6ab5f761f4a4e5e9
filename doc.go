// Package stringsplitter splits text on literal markers while keeping
// delimited stretches, such as quoted fields, in one piece.
//
// The same scan rules drive three frontends: Split for whole strings,
// Session for chunk-at-a-time streaming with carry-over across chunk
// boundaries, and SplitFunc for plugging into a bufio.Scanner. The
// Splitter engine object wraps the rules into a stream processor with
// ring-buffer ingestion, part digests and pluggable output emitters,
// exposed through cmd/string-splitter.
package stringsplitter
