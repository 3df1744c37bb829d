// Package chunk implements the Chunk Boundary Finder (C6): splitting a byte
// region into row-aligned, quote-aware chunks suitable for parallel decode.
//
// Grounded on raceordie690-simdcsv's chunking.go (detectQoPattern/
// detectOqPattern/determineAmbiguity quote-parity reasoning, byte-scanned
// rather than regex- or lookup-table-driven) and on melihbirim-sieswi's
// internal/engine/parallel.go chunk{id, offset, size} shape and its
// skip-partial-first-line / trim-incomplete-last-line boundary discipline.
package chunk

import (
	"github.com/csvcore/csvcore/internal/scanner"
)

// Boundary describes one quote-aware, row-aligned byte range of an input,
// suitable for independent parsing by a single worker.
type Boundary struct {
	Index   int
	Start   int
	End     int
	IsFirst bool
}

// FindBoundaries splits data into chunks of approximately chunkSizeBytes,
// each one ending exactly at a row terminator that lies outside any quoted
// field. If hasHeader is true, the header row is consumed first and excluded
// from every chunk; headerEnd reports where the data rows begin.
//
// Correctness: quote parity at any offset t is determined entirely by the
// count of '"' bytes in the region preceding t, since RFC 4180 has no
// escaping outside doubled quotes — two quotes in a row toggle the "inside a
// quoted field" state twice, leaving it unchanged. Each chunk boundary is
// chosen at a position known (by construction) to be outside a quoted
// field, so the next chunk can again assume parity zero at its start and
// only needs to count quotes within its own span. That count is produced by
// scanner.ScanBuffer's chunked SIMD/SWAR mask engine (FinalQuoted) rather
// than a linear byte scan, so boundary-finding over a multi-megabyte input
// gets the same tiered acceleration as row parsing itself.
func FindBoundaries(data []byte, delim byte, chunkSizeBytes int, hasHeader bool) (boundaries []Boundary, headerEnd int) {
	n := len(data)
	cursor := 0
	if hasHeader && n > 0 {
		headerEnd = scanForwardForBoundary(data, 0, delim, false)
		cursor = headerEnd
	}
	if chunkSizeBytes <= 0 {
		chunkSizeBytes = n
		if chunkSizeBytes == 0 {
			chunkSizeBytes = 1
		}
	}

	idx := 0
	for cursor < n {
		target := cursor + chunkSizeBytes
		if target >= n {
			boundaries = append(boundaries, Boundary{Index: idx, Start: cursor, End: n, IsFirst: idx == 0})
			break
		}

		quotedAtTarget := quoteParity(data[cursor:target], delim)
		end := scanForwardForBoundary(data, target, delim, quotedAtTarget)
		if end <= cursor {
			// A single row longer than chunkSizeBytes: grow the chunk to
			// cover it rather than emitting a zero-progress boundary.
			end = scanForwardForBoundary(data, cursor, delim, false)
			if end <= cursor {
				end = n
			}
		}
		boundaries = append(boundaries, Boundary{Index: idx, Start: cursor, End: end, IsFirst: idx == 0})
		cursor = end
		idx++
	}
	return boundaries, headerEnd
}

// quoteParity reports whether data leaves the cursor inside a quoted field,
// via scanner.ScanBuffer's pooled chunked mask scan.
func quoteParity(data []byte, delim byte) bool {
	result := scanner.ScanBuffer(data, delim)
	defer scanner.ReleaseScanResult(result)
	return result.FinalQuoted != 0
}

// scanForwardForBoundary walks forward from "from", tracking quote parity
// starting at quotedAtStart, and returns the offset just past the first row
// terminator (LF, CRLF, or lone CR) encountered while not inside a quoted
// field. It returns len(data) if no such terminator exists before EOF.
func scanForwardForBoundary(data []byte, from int, delim byte, quotedAtStart bool) int {
	quoted := quotedAtStart
	i := from
	n := len(data)
	for i < n {
		rel := scanner.FindNextStructural(data[i:], delim)
		if rel == n-i {
			return n
		}
		idx := i + rel
		b := data[idx]
		switch {
		case b == '"':
			quoted = !quoted
			i = idx + 1
		case !quoted && b == '\n':
			return idx + 1
		case !quoted && b == '\r':
			if idx+1 < n && data[idx+1] == '\n' {
				return idx + 2
			}
			return idx + 1
		default:
			i = idx + 1
		}
	}
	return n
}
