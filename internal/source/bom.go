package source

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Encoding identifies a detected byte-order-marked encoding.
type Encoding int

const (
	// UTF8 covers both a genuine UTF-8 BOM and "no BOM detected" — both are
	// parsed in place, since UTF-8 is ASCII-compatible at the structural
	// byte level (',', '"', '\r', '\n' never appear as continuation bytes).
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

// DetectBOM inspects the leading bytes of data for a UTF-8/16/32 byte order
// mark, checking the 4-byte markers before the 2-byte ones so a UTF-32 BOM
// (which contains a UTF-16LE BOM as its first two bytes) is not
// misidentified. It returns the detected encoding and the number of leading
// bytes to skip (0 if no BOM was present).
func DetectBOM(data []byte) (enc Encoding, skip int) {
	switch {
	case len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0xFE && data[3] == 0xFF:
		return UTF32BE, 4
	case len(data) >= 4 && data[0] == 0xFF && data[1] == 0xFE && data[2] == 0x00 && data[3] == 0x00:
		return UTF32LE, 4
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return UTF8, 3
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return UTF16BE, 2
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return UTF16LE, 2
	default:
		return UTF8, 0
	}
}

// IsASCIICompatible reports whether enc can be parsed in place (structural
// bytes occupy a single byte position with no wide-character ambiguity).
func IsASCIICompatible(enc Encoding) bool {
	return enc == UTF8
}

// NormalizeBOM strips a detected BOM and, for non-ASCII-compatible
// encodings, transcodes the remainder to UTF-8 once into a freshly owned
// buffer. ASCII-compatible input (plain UTF-8, with or without a BOM) is
// returned with only the BOM sliced off, at zero additional cost.
func NormalizeBOM(data []byte) ([]byte, error) {
	enc, skip := DetectBOM(data)
	rest := data[skip:]
	if IsASCIICompatible(enc) {
		return rest, nil
	}
	decoder := textEncodingFor(enc)
	out, err := decoder.NewDecoder().Bytes(rest)
	if err != nil {
		return nil, fmt.Errorf("source: transcode %v to UTF-8: %w", enc, err)
	}
	return out, nil
}

func textEncodingFor(enc Encoding) encoding.Encoding {
	switch enc {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case UTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	case UTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	default:
		return unicode.UTF8
	}
}

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	case UTF32LE:
		return "UTF-32LE"
	case UTF32BE:
		return "UTF-32BE"
	default:
		return "unknown"
	}
}
