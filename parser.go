package csvcore

import (
	"bytes"
	"io"

	"github.com/csvcore/csvcore/internal/scanner"
)

// ParsingMode controls how a RowParser reacts to RFC 4180 violations.
type ParsingMode int

const (
	// ParsingLenient tolerates a bare quote in an unquoted field and
	// trailing garbage after a closing quote, folding either case into the
	// field as literal content and recording it on the RowView's flags
	// instead of failing. This is the default.
	ParsingLenient ParsingMode = iota
	// ParsingStrict rejects both cases with a *ParseError.
	ParsingStrict
)

// RowParser is a single-pass, non-restartable iterator producing one
// RowView per call to Next, over a fixed buffer. It is the sole entry point
// for C4 (row framing) and C5 (zero-copy field views): every decoding path
// — the scalar Reader, the streaming decoder, and the parallel decoder's
// per-chunk workers — drives one RowParser each.
//
// Grounded on field_parser.go's parserState/processAllChunks state machine,
// restated as a direct byte-cursor walk over internal/scanner's
// FindNextStructural/FindNextQuote acceleration primitives rather than over
// precomputed 64-byte chunk bitmasks: a RowParser is frequently handed a
// single parallel-decode chunk a few KiB long, where the extra bookkeeping
// of chunked bitmask scanning does not pay for itself, while the scanner's
// SWAR/scalar find primitives still accelerate the long intra-field
// jumps that dominate real input.
type RowParser struct {
	buf   []byte
	delim byte
	mode  ParsingMode
	pos   int
	line  int

	// scratch holds the RowView returned by the previous call to Next; its
	// slices are reused (grown, never shrunk) across rows to avoid
	// per-row allocation in the common case.
	scratch RowView
}

// NewRowParser returns a RowParser over buf starting at line 1. buf must
// remain live and unmodified for as long as any RowView it produced is in
// use.
func NewRowParser(buf []byte, delim byte, mode ParsingMode) *RowParser {
	return &RowParser{buf: buf, delim: delim, mode: mode, line: 1}
}

// Pos returns the current byte cursor, i.e. the offset of the next
// unconsumed byte.
func (p *RowParser) Pos() int { return p.pos }

// Next parses and returns the next row. It returns io.EOF once the buffer
// is exhausted. A non-nil, non-EOF error under ParsingStrict is returned
// alongside the row fields successfully parsed before the violation, the
// same recovery shape encoding/csv uses.
//
// The returned *RowView aliases p's internal scratch storage: it is only
// valid until the next call to Next.
func (p *RowParser) Next() (*RowView, error) {
	if p.pos >= len(p.buf) {
		return nil, io.EOF
	}

	v := &p.scratch
	v.buf = p.buf
	v.starts = v.starts[:0]
	v.ends = v.ends[:0]
	v.quoted = v.quoted[:0]
	v.escape = v.escape[:0]
	v.UnterminatedQuote = false
	v.UnterminatedQuoteColumn = 0
	v.QuoteInUnquoted = false
	v.Line = p.line

	for {
		fieldStart := p.pos
		if fieldStart < len(p.buf) && p.buf[fieldStart] == '"' {
			done, err := p.parseQuotedField(v)
			if err != nil {
				return v, err
			}
			if done {
				return v, nil
			}
			continue
		}

		rowDone, err := p.parseUnquotedField(v, fieldStart)
		if err != nil {
			return v, err
		}
		if rowDone {
			return v, nil
		}
	}
}

// parseUnquotedField scans one unquoted field starting at fieldStart and
// appends it to v. rowDone reports whether the row terminated (newline or
// EOF); if false, the caller loops to parse the next field after a
// delimiter.
func (p *RowParser) parseUnquotedField(v *RowView, fieldStart int) (rowDone bool, err error) {
	i := fieldStart
	sawStrayQuote := false
	for {
		if i >= len(p.buf) {
			p.appendField(v, fieldStart, len(p.buf), false, false)
			p.pos = len(p.buf)
			if sawStrayQuote {
				v.QuoteInUnquoted = true
				if p.mode == ParsingStrict {
					return true, p.bareQuoteError(fieldStart)
				}
			}
			return true, nil
		}

		rel := scanner.FindNextStructural(p.buf[i:], p.delim)
		if rel == len(p.buf)-i {
			i = len(p.buf)
			continue
		}
		pos := i + rel
		b := p.buf[pos]

		switch {
		case b == '"' && pos != fieldStart:
			sawStrayQuote = true
			i = pos + 1
		case b == p.delim:
			p.appendField(v, fieldStart, pos, false, false)
			p.pos = pos + 1
			if sawStrayQuote {
				v.QuoteInUnquoted = true
				if p.mode == ParsingStrict {
					return false, p.bareQuoteError(fieldStart)
				}
			}
			return false, nil
		case b == '\n':
			p.appendField(v, fieldStart, pos, false, false)
			p.pos = pos + 1
			p.line++
			if sawStrayQuote {
				v.QuoteInUnquoted = true
				if p.mode == ParsingStrict {
					return true, p.bareQuoteError(fieldStart)
				}
			}
			return true, nil
		case b == '\r':
			p.appendField(v, fieldStart, pos, false, false)
			if pos+1 < len(p.buf) && p.buf[pos+1] == '\n' {
				p.pos = pos + 2
			} else {
				p.pos = pos + 1
			}
			p.line++
			if sawStrayQuote {
				v.QuoteInUnquoted = true
				if p.mode == ParsingStrict {
					return true, p.bareQuoteError(fieldStart)
				}
			}
			return true, nil
		default:
			// b == '"' && pos == fieldStart: a bare quote can only open a
			// quoted field when nothing has been accumulated yet, which
			// means this field is actually quoted and control should never
			// reach here (Next dispatches on buf[fieldStart] == '"' before
			// calling parseUnquotedField). Advance past it defensively.
			i = pos + 1
		}
	}
}

// parseQuotedField scans one quoted field starting at a '"' and appends it
// to v. done reports whether the row terminated.
func (p *RowParser) parseQuotedField(v *RowView) (done bool, err error) {
	openQuote := p.pos
	contentStart := openQuote + 1
	escape := false
	i := contentStart

	var closeQuote int
	for {
		rel := scanner.FindNextQuote(p.buf[i:])
		if rel == len(p.buf)-i {
			// No closing quote before EOF.
			p.countNewlines(contentStart, len(p.buf))
			p.appendField(v, contentStart, len(p.buf), true, escape)
			p.pos = len(p.buf)
			v.UnterminatedQuote = true
			v.UnterminatedQuoteColumn = openQuote + 1
			return true, nil
		}
		qpos := i + rel
		if qpos+1 < len(p.buf) && p.buf[qpos+1] == '"' {
			escape = true
			i = qpos + 2
			continue
		}
		closeQuote = qpos
		break
	}

	p.countNewlines(contentStart, closeQuote)
	p.appendField(v, contentStart, closeQuote, true, escape)
	after := closeQuote + 1

	if after >= len(p.buf) {
		p.pos = after
		return true, nil
	}
	b := p.buf[after]
	switch {
	case b == p.delim:
		p.pos = after + 1
		return false, nil
	case b == '\n':
		p.pos = after + 1
		p.line++
		return true, nil
	case b == '\r':
		if after+1 < len(p.buf) && p.buf[after+1] == '\n' {
			p.pos = after + 2
		} else {
			p.pos = after + 1
		}
		p.line++
		return true, nil
	default:
		// Trailing garbage after the closing quote: reclassify the whole
		// span (including both quote characters) as literal unquoted
		// content and resume scanning for the real field boundary.
		v.QuoteInUnquoted = true
		if p.mode == ParsingStrict {
			p.pos = after
			return true, p.quoteError(openQuote)
		}
		end := after + scanner.FindNextStructural(p.buf[after:], p.delim)
		v.starts[len(v.starts)-1] = uint32(openQuote) //nolint:gosec
		v.ends[len(v.ends)-1] = uint32(end)            //nolint:gosec
		v.quoted[len(v.quoted)-1] = false
		v.escape[len(v.escape)-1] = false
		if end >= len(p.buf) {
			p.pos = len(p.buf)
			return true, nil
		}
		b = p.buf[end]
		switch b {
		case p.delim:
			p.pos = end + 1
			return false, nil
		case '\n':
			p.pos = end + 1
			p.line++
			return true, nil
		case '\r':
			if end+1 < len(p.buf) && p.buf[end+1] == '\n' {
				p.pos = end + 2
			} else {
				p.pos = end + 1
			}
			p.line++
			return true, nil
		}
		p.pos = end
		return true, nil
	}
}

// countNewlines tallies line-counter increments for a quoted span that may
// contain raw LF or lone-CR bytes, per the diagnostic line-tracking rule.
func (p *RowParser) countNewlines(from, to int) {
	if to <= from {
		return
	}
	span := p.buf[from:to]
	p.line += bytes.Count(span, []byte{'\n'})
	// Count lone CRs (not followed by LF, which would double-count a CRLF
	// already captured by the '\n' count above).
	for i := 0; i < len(span); i++ {
		if span[i] == '\r' && (i+1 >= len(span) || span[i+1] != '\n') {
			p.line++
		}
	}
}

func (p *RowParser) appendField(v *RowView, start, end int, quoted, escape bool) {
	v.starts = append(v.starts, uint32(start)) //nolint:gosec
	v.ends = append(v.ends, uint32(end))        //nolint:gosec
	v.quoted = append(v.quoted, quoted)
	v.escape = append(v.escape, escape)
}

func (p *RowParser) bareQuoteError(fieldStart int) *ParseError {
	return &ParseError{StartLine: p.line, Line: p.line, Column: fieldStart + 1, Err: ErrBareQuote}
}

func (p *RowParser) quoteError(openQuote int) *ParseError {
	return &ParseError{StartLine: p.line, Line: p.line, Column: openQuote + 1, Err: ErrQuote}
}
