package csvcore

import (
	"io"

	"github.com/csvcore/csvcore/internal/source"
)

// Reader reads []string records from RFC 4180 CSV data, the shape
// encoding/csv callers already know. It is a thin wrapper over RowParser:
// every record it returns is materialized (copied) out of the parser's
// reused scratch storage, trading RowView's zero-copy aliasing for the
// plain, retain-as-long-as-you-like []string callers expect from this
// surface.
type Reader struct {
	parser *RowParser
	src    *source.MappedSource
}

// ReaderOption configures a Reader at construction.
type ReaderOption func(*readerOptions)

type readerOptions struct {
	delim byte
	mode  ParsingMode
}

// WithReaderDelimiter sets the field delimiter. Comma by default.
func WithReaderDelimiter(b byte) ReaderOption {
	return func(o *readerOptions) { o.delim = b }
}

// WithReaderParsingMode sets strict or lenient RFC 4180 violation handling.
// Lenient by default.
func WithReaderParsingMode(m ParsingMode) ReaderOption {
	return func(o *readerOptions) { o.mode = m }
}

func resolveReaderOptions(opts []ReaderOption) readerOptions {
	o := readerOptions{delim: ',', mode: ParsingLenient}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewReader wraps r, buffering it whole via internal/source before the
// first Read. The whole-input requirement
// mirrors RowParser's: a single pass needs the complete buffer up front to
// drive its structural scans.
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	src, err := source.FromReader(r)
	if err != nil {
		return nil, err
	}
	if int64(len(src.Bytes())) > DefaultMaxInputSize {
		src.Close()
		return nil, ErrInputTooLarge
	}
	o := resolveReaderOptions(opts)
	data, err := source.NormalizeBOM(src.Bytes())
	if err != nil {
		src.Close()
		return nil, err
	}
	return &Reader{parser: NewRowParser(data, o.delim, o.mode), src: src}, nil
}

// NewReaderBytes wraps an already in-memory buffer. UTF-8 data is parsed in
// place, not copied, so data must stay unmodified until reading is done;
// each record Read returns is copied out of it. A transcoding failure degrades
// to the original bytes rather than panicking, since this constructor has
// no error return.
func NewReaderBytes(data []byte, opts ...ReaderOption) *Reader {
	o := resolveReaderOptions(opts)
	normalized, err := source.NormalizeBOM(data)
	if err != nil {
		normalized = data
	}
	return &Reader{parser: NewRowParser(normalized, o.delim, o.mode)}
}

// Read returns the next record, or io.EOF once the input is exhausted.
// Under ParsingStrict, a malformed row is returned alongside the fields
// successfully parsed before the violation, matching encoding/csv's
// recovery shape.
func (r *Reader) Read() (record []string, err error) {
	v, err := r.parser.Next()
	if v == nil {
		return nil, err
	}
	record = materializeRow(v)
	if v.UnterminatedQuote {
		return record, &ParsingError{
			Message:  "Unterminated quoted field",
			Location: Location{Row: v.Line, ColumnIndex: v.UnterminatedQuoteColumn},
		}
	}
	return record, err
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := r.Read()
		if rec != nil {
			out = append(out, rec)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// Close releases the Reader's mapped source, if any. Safe to call on a
// Reader built from NewReaderBytes, where it is a no-op.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	return r.src.Close()
}

func materializeRow(v *RowView) []string {
	n := v.FieldCount()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i], _ = v.Field(i)
	}
	return out
}

// ParseBytes parses the whole of data and returns every record.
func ParseBytes(data []byte, opts ...ReaderOption) ([][]string, error) {
	return NewReaderBytes(data, opts...).ReadAll()
}

// ParseBytesStreaming parses data lazily, yielding one record at a time to
// yield. Iteration stops as soon as yield returns false, the range-over-func
// convention used elsewhere in this package (see StreamEncoder.EncodeFunc).
func ParseBytesStreaming(data []byte, opts ...ReaderOption) func(yield func([]string, error) bool) {
	return func(yield func([]string, error) bool) {
		r := NewReaderBytes(data, opts...)
		for {
			rec, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}
