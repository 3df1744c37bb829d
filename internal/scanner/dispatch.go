// Package scanner implements tiered structural-byte scanning over raw CSV
// bytes: an optional AVX-512 SIMD tier, an always-available SWAR tier, and a
// scalar tier for short tails. All three tiers are required to agree
// byte-for-byte; callers never need to know which tier served a given call.
//
// Grounded on nnnkkk7-go-simdcsv's simd_scanner.go (mask generation, quote
// state tracking, chunk-boundary double-quote handling) and on
// shapestone-shape-csv's chunked SWAR scanning. Unlike the teacher, this
// package is always compiled: the AVX-512 path lives in avx512.go behind its
// own build tag and is consulted only when both the tag and the runtime CPU
// support it.
package scanner

import (
	"bytes"
	"math/bits"
	"sync"

	"golang.org/x/sys/cpu"
)

// chunkSize is the width of one SIMD stripe (AVX-512 = 64 bytes).
const chunkSize = 64

// HasAVX512 reports whether the running CPU supports the AVX-512 feature
// combination this package's SIMD tier requires. It is always computed (the
// x/sys/cpu probe itself needs no build tag) even when the SIMD tier is not
// compiled in, so callers and tests can distinguish "CPU capable but tier
// not built" from "CPU incapable".
var HasAVX512 = cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL

// simdMasks64, when non-nil, computes the four structural masks for an
// exactly-64-byte stripe using AVX-512 instructions. It is set by avx512.go's
// init() only when built with GOEXPERIMENT=simd on amd64; otherwise nil and
// every call site falls back to the SWAR tier.
var simdMasks64 func(data []byte, delim byte) (quote, sep, cr, nl uint64)

// simdAvailable reports whether the SIMD tier is both compiled in and
// supported by the current CPU.
func simdAvailable() bool {
	return simdMasks64 != nil && HasAVX512
}

// masks64 computes the four structural masks for a chunk of up to 64 bytes,
// dispatching to the fastest available tier. data longer than 64 bytes is an
// error on the caller's part; only the first 64 bytes are considered.
func masks64(data []byte, delim byte) (quote, sep, cr, nl uint64) {
	if len(data) >= chunkSize {
		data = data[:chunkSize]
		if simdAvailable() {
			return simdMasks64(data, delim)
		}
		return swarMasks64(data, delim)
	}
	if len(data) >= 8 {
		return swarMasks64(data, delim)
	}
	return scalarMasks64(data, delim)
}

// masksPadded computes structural masks for a chunk shorter than 64 bytes by
// zero-padding into a stack buffer, then masking off bits beyond the real
// data. validBits reports how many low bits are meaningful.
func masksPadded(data []byte, delim byte) (quote, sep, cr, nl uint64, validBits int) {
	validBits = len(data)
	if validBits == 0 {
		return 0, 0, 0, 0, 0
	}
	var padded [chunkSize]byte
	copy(padded[:], data)
	quote, sep, cr, nl = masks64(padded[:], delim)
	if validBits < chunkSize {
		mask := (uint64(1) << uint(validBits)) - 1
		quote &= mask
		sep &= mask
		cr &= mask
		nl &= mask
	}
	return
}

// FindNextQuote returns the offset of the first '"' in data, or len(data) if
// none is present.
func FindNextQuote(data []byte) int {
	return FindNextByte(data, '"')
}

// FindNextByte returns the offset of the first occurrence of target in data,
// or len(data) if absent, dispatching to the SWAR tier for the bulk of the
// scan and scalar compare for the sub-8-byte tail.
func FindNextByte(data []byte, target byte) int {
	n := len(data)
	if n >= 8 {
		if off := swarFindByte(data, target); off < n-(n%8) {
			return off
		}
	}
	tailStart := n - (n % 8)
	if tail := scalarFindByte(data[tailStart:], target); tail < len(data[tailStart:]) {
		return tailStart + tail
	}
	return n
}

// FindNextStructural returns the offset of the first byte in data equal to
// delim, '"', '\r', or '\n', or len(data) if none is present.
func FindNextStructural(data []byte, delim byte) int {
	n := len(data)
	if n >= 8 {
		if off := swarFindAny(data, delim, '"', '\r', '\n'); off < n-(n%8) {
			return off
		}
	}
	tailStart := n - (n % 8)
	if tail := scalarFindAny(data[tailStart:], delim, '"', '\r', '\n'); tail < len(data[tailStart:]) {
		return tailStart + tail
	}
	return n
}

// NeedsQuoting reports whether data contains any byte that forces quoting on
// output: delim, '"', '\r', or '\n'.
func NeedsQuoting(data []byte, delim byte) bool {
	n := len(data)
	tailStart := n - (n % 8)
	if tailStart > 0 && swarNeedsQuoting(data[:tailStart], delim) {
		return true
	}
	return scalarNeedsQuoting(data[tailStart:], delim)
}

// HasEscapedQuote reports whether data contains a `""` bigram, by walking
// quote positions (via the tiered FindNextQuote primitive) and checking each
// neighbor — the existence check itself is O(1) per quote found.
func HasEscapedQuote(data []byte) bool {
	pos := 0
	for {
		rel := FindNextQuote(data[pos:])
		if rel == len(data[pos:]) {
			return false
		}
		idx := pos + rel
		if idx+1 < len(data) && data[idx+1] == '"' {
			return true
		}
		pos = idx + 1
	}
}

// CountNewlinesApprox returns the number of '\n' bytes in data, ignoring
// quoting. It is reserved for progress-estimation UX; callers MUST NOT use it
// to size result arrays, since a quoted field may embed literal newlines.
func CountNewlinesApprox(data []byte) int {
	return bytes.Count(data, []byte{'\n'})
}

// StructuralPos is one element of a full structural scan.
type StructuralPos struct {
	Offset int
	Byte   byte
}

// ScanStructural returns, in strictly ascending offset order, every position
// in data whose byte is delim, '"', '\r', or '\n'. The chunk boundary
// finder does not use it; it takes quote parity from ScanBuffer.
func ScanStructural(data []byte, delim byte) []StructuralPos {
	var out []StructuralPos
	pos := 0
	for pos < len(data) {
		rel := FindNextStructural(data[pos:], delim)
		if rel == len(data[pos:]) {
			break
		}
		idx := pos + rel
		out = append(out, StructuralPos{Offset: idx, Byte: data[idx]})
		pos = idx + 1
	}
	return out
}

// ScanState carries quote parity and boundary-escape state between
// consecutive 64-byte chunks of a ScanBuffer call.
type ScanState struct {
	Quoted        uint64 // 0 = outside a quoted field, ^0 = inside
	SkipNextQuote bool   // the previous chunk ended mid-escaped-quote
}

// ScanResult holds the per-chunk structural masks produced by ScanBuffer.
// Pooled via sync.Pool (ReleaseScanResult) since callers typically scan many
// chunks per decode and the mask slices would otherwise churn the GC.
type ScanResult struct {
	QuoteMasks     []uint64
	SeparatorMasks []uint64
	NewlineMasks   []uint64
	ChunkHasDQ     []bool
	HasQuotes      bool
	FinalQuoted    uint64
	ChunkCount     int
	LastChunkBits  int
}

const scanResultPoolCapacity = 1024

var scanResultPool = sync.Pool{
	New: func() interface{} {
		return &ScanResult{
			QuoteMasks:     make([]uint64, 0, scanResultPoolCapacity),
			SeparatorMasks: make([]uint64, 0, scanResultPoolCapacity),
			NewlineMasks:   make([]uint64, 0, scanResultPoolCapacity),
			ChunkHasDQ:     make([]bool, 0, scanResultPoolCapacity),
		}
	},
}

func (sr *ScanResult) reset() {
	sr.QuoteMasks = sr.QuoteMasks[:0]
	sr.SeparatorMasks = sr.SeparatorMasks[:0]
	sr.NewlineMasks = sr.NewlineMasks[:0]
	sr.ChunkHasDQ = sr.ChunkHasDQ[:0]
	sr.HasQuotes = false
	sr.FinalQuoted = 0
	sr.ChunkCount = 0
	sr.LastChunkBits = 0
}

// AcquireScanResult returns a pooled ScanResult ready for use by ScanBuffer.
func AcquireScanResult() *ScanResult {
	sr := scanResultPool.Get().(*ScanResult)
	sr.reset()
	return sr
}

// ReleaseScanResult returns sr to the pool. The caller must not use sr again.
func ReleaseScanResult(sr *ScanResult) {
	if sr != nil {
		sr.reset()
		scanResultPool.Put(sr)
	}
}

type chunkMasks struct {
	quote, sep, cr, nl uint64
}

// ScanBuffer processes buf in 64-byte chunks, producing, per chunk, a quote
// mask (escaped doubled quotes folded out), a separator mask (separators
// inside quotes invalidated), and a newline mask (CRLF normalized to a single
// LF bit, newlines inside quotes invalidated). State carries across chunks so
// a field spanning a chunk boundary, or a `""` escape spanning one, is
// handled correctly.
func ScanBuffer(buf []byte, delim byte) *ScanResult {
	if len(buf) == 0 {
		return AcquireScanResult()
	}

	chunkCount := (len(buf) + chunkSize - 1) / chunkSize
	result := AcquireScanResult()
	result.ChunkCount = chunkCount

	growUint64 := func(s []uint64) []uint64 {
		if cap(s) < chunkCount {
			newCap := chunkCount
			if newCap < cap(s)*2 {
				newCap = cap(s) * 2
			}
			return make([]uint64, chunkCount, newCap)
		}
		return s[:chunkCount]
	}
	result.QuoteMasks = growUint64(result.QuoteMasks)
	result.SeparatorMasks = growUint64(result.SeparatorMasks)
	result.NewlineMasks = growUint64(result.NewlineMasks)
	if cap(result.ChunkHasDQ) < chunkCount {
		newCap := chunkCount
		if newCap < cap(result.ChunkHasDQ)*2 {
			newCap = cap(result.ChunkHasDQ) * 2
		}
		result.ChunkHasDQ = make([]bool, chunkCount, newCap)
	} else {
		result.ChunkHasDQ = result.ChunkHasDQ[:chunkCount]
		for i := range result.ChunkHasDQ {
			result.ChunkHasDQ[i] = false
		}
	}

	state := ScanState{}

	var curMasks, nextMasks chunkMasks
	var curValidBits int

	if len(buf) >= chunkSize {
		curMasks.quote, curMasks.sep, curMasks.cr, curMasks.nl = masks64(buf[0:chunkSize], delim)
		curValidBits = chunkSize
	} else {
		curMasks.quote, curMasks.sep, curMasks.cr, curMasks.nl, curValidBits = masksPadded(buf, delim)
		result.LastChunkBits = curValidBits
	}

	if chunkCount > 1 && len(buf) > chunkSize {
		if len(buf) >= 2*chunkSize {
			nextMasks.quote, nextMasks.sep, nextMasks.cr, nextMasks.nl = masks64(buf[chunkSize:2*chunkSize], delim)
		} else {
			var nextValidBits int
			nextMasks.quote, nextMasks.sep, nextMasks.cr, nextMasks.nl, nextValidBits = masksPadded(buf[chunkSize:], delim)
			if chunkCount == 2 {
				result.LastChunkBits = nextValidBits
			}
		}
	}

	for chunkIdx := 0; chunkIdx < chunkCount; chunkIdx++ {
		quoteMask := curMasks.quote
		sepMask := curMasks.sep
		crMask := curMasks.cr
		nlMask := curMasks.nl
		validBits := curValidBits

		nextQuoteMask := nextMasks.quote
		nextNlMask := nextMasks.nl

		if state.SkipNextQuote && quoteMask&1 != 0 {
			quoteMask &= ^uint64(1)
		}
		state.SkipNextQuote = false

		newlineMaskOut := nlMask
		crlfPairs := crMask & (nlMask >> 1)
		isolatedCRs := crMask & ^crlfPairs
		newlineMaskOut |= isolatedCRs

		if validBits == chunkSize && crMask&(1<<63) != 0 {
			if nextNlMask&1 != 0 {
				newlineMaskOut &= ^(uint64(1) << 63)
			} else {
				newlineMaskOut |= uint64(1) << 63
			}
		}

		initialQuoted := state.Quoted
		quoteMaskOut, sepMaskOut, hasDoubleQuote, boundaryDoubleQuote := processQuotesAndSeparators(
			quoteMask, sepMask, newlineMaskOut, nextQuoteMask, &state,
		)
		if boundaryDoubleQuote {
			state.SkipNextQuote = true
		}

		endQuoted := state.Quoted
		state.Quoted = initialQuoted
		newlineMaskOut = invalidateNewlinesInQuotes(quoteMaskOut, newlineMaskOut, &state)
		state.Quoted = endQuoted

		result.QuoteMasks[chunkIdx] = quoteMaskOut
		result.SeparatorMasks[chunkIdx] = sepMaskOut
		result.NewlineMasks[chunkIdx] = newlineMaskOut

		if quoteMaskOut != 0 {
			result.HasQuotes = true
		}
		if hasDoubleQuote {
			result.ChunkHasDQ[chunkIdx] = true
		}

		curMasks = nextMasks
		curValidBits = chunkSize

		nextChunkIdx := chunkIdx + 2
		if nextChunkIdx < chunkCount {
			nextOffset := nextChunkIdx * chunkSize
			remaining := len(buf) - nextOffset
			if remaining >= chunkSize {
				nextMasks.quote, nextMasks.sep, nextMasks.cr, nextMasks.nl = masks64(buf[nextOffset:nextOffset+chunkSize], delim)
			} else {
				nextMasks.quote, nextMasks.sep, nextMasks.cr, nextMasks.nl, curValidBits = masksPadded(buf[nextOffset:], delim)
				result.LastChunkBits = curValidBits
			}
		} else {
			nextMasks = chunkMasks{}
			if chunkIdx+1 == chunkCount-1 && len(buf)%chunkSize != 0 {
				curValidBits = len(buf) % chunkSize
				result.LastChunkBits = curValidBits
			}
		}
	}

	result.FinalQuoted = state.Quoted
	return result
}

func processQuotesAndSeparators(quoteMask, sepMask, newlineMask, nextQuoteMask uint64, state *ScanState) (quoteMaskOut, sepMaskOut uint64, hasDoubleQuote, boundaryDoubleQuote bool) {
	quoteMaskOut = quoteMask
	sepMaskOut = sepMask

	workQuoteMask := quoteMask
	workSepMask := sepMask
	workNewlineMask := newlineMask
	quoted := state.Quoted

	for {
		quotePos := bits.TrailingZeros64(workQuoteMask)
		sepPos := bits.TrailingZeros64(workSepMask)
		nlPos := bits.TrailingZeros64(workNewlineMask)

		minPos := minOfThree(quotePos, sepPos, nlPos)
		if minPos >= chunkSize {
			break
		}

		switch minPos {
		case quotePos:
			if quoted != 0 {
				if quotePos == chunkSize-1 && nextQuoteMask&1 != 0 {
					quoteMaskOut &= ^(uint64(1) << (chunkSize - 1))
					hasDoubleQuote = true
					boundaryDoubleQuote = true
				} else if quotePos < chunkSize-1 && workQuoteMask&(uint64(1)<<uint(quotePos+1)) != 0 {
					quoteMaskOut &= ^(uint64(3) << uint(quotePos))
					hasDoubleQuote = true
					workQuoteMask &= ^(uint64(1) << uint(quotePos+1))
				} else {
					quoted = 0
				}
			} else {
				quoted = ^uint64(0)
			}
			workQuoteMask &= ^(uint64(1) << uint(quotePos))
		case sepPos:
			if quoted != 0 {
				sepMaskOut &= ^(uint64(1) << uint(sepPos))
			}
			workSepMask &= ^(uint64(1) << uint(sepPos))
		default:
			workNewlineMask &= ^(uint64(1) << uint(nlPos))
		}
	}

	state.Quoted = quoted
	return quoteMaskOut, sepMaskOut, hasDoubleQuote, boundaryDoubleQuote
}

func minOfThree(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

func invalidateNewlinesInQuotes(quoteMask, newlineMask uint64, state *ScanState) uint64 {
	quoted := state.Quoted
	result := newlineMask
	workQuoteMask := quoteMask
	workNewlineMask := newlineMask

	for workQuoteMask != 0 || workNewlineMask != 0 {
		quotePos := bits.TrailingZeros64(workQuoteMask)
		nlPos := bits.TrailingZeros64(workNewlineMask)

		if quotePos >= 64 && nlPos >= 64 {
			break
		}

		if quotePos < nlPos {
			if quoted != 0 {
				quoted = 0
			} else {
				quoted = ^uint64(0)
			}
			workQuoteMask &= ^(uint64(1) << uint(quotePos))
		} else {
			if quoted != 0 {
				result &= ^(uint64(1) << uint(nlPos))
			}
			workNewlineMask &= ^(uint64(1) << uint(nlPos))
		}
	}

	return result
}
