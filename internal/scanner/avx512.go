//go:build goexperiment.simd && amd64

package scanner

// AVX-512 enhancement tier. Requires Go 1.26 with GOEXPERIMENT=simd; the rest
// of this package compiles and behaves identically without it, falling back
// to the SWAR tier in swar.go. See nnnkkk7-go-simdcsv's simd_scanner.go for
// the original single-tier version this was split out of.
//
// NOTE: archsimd.Int8x32.Equal().ToBits() emits VPMOVB2M (AVX-512BW), which
// SIGILLs on CPUs lacking AVX-512 — hence the runtime capability gate in
// dispatch.go (HasAVX512) in addition to this build tag.

import (
	"simd/archsimd"
	"unsafe"
)

const simdHalfChunk = 32

func init() {
	simdMasks64 = generateMasksAVX512
}

func generateMasksAVX512(data []byte, delim byte) (quote, sep, cr, nl uint64) {
	quoteCmp := archsimd.BroadcastInt8x32('"')
	sepCmp := archsimd.BroadcastInt8x32(int8(delim))
	crCmp := archsimd.BroadcastInt8x32('\r')
	nlCmp := archsimd.BroadcastInt8x32('\n')

	low := archsimd.LoadInt8x32((*[simdHalfChunk]int8)(unsafe.Pointer(&data[0])))
	quoteLowMask := low.Equal(quoteCmp).ToBits()
	sepLowMask := low.Equal(sepCmp).ToBits()
	crLowMask := low.Equal(crCmp).ToBits()
	nlLowMask := low.Equal(nlCmp).ToBits()

	high := archsimd.LoadInt8x32((*[simdHalfChunk]int8)(unsafe.Pointer(&data[simdHalfChunk])))
	quoteHighMask := high.Equal(quoteCmp).ToBits()
	sepHighMask := high.Equal(sepCmp).ToBits()
	crHighMask := high.Equal(crCmp).ToBits()
	nlHighMask := high.Equal(nlCmp).ToBits()

	quote = uint64(quoteLowMask) | (uint64(quoteHighMask) << 32)
	sep = uint64(sepLowMask) | (uint64(sepHighMask) << 32)
	cr = uint64(crLowMask) | (uint64(crHighMask) << 32)
	nl = uint64(nlLowMask) | (uint64(nlHighMask) << 32)
	return
}
