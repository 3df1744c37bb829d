package csvcore

import (
	"context"
	"fmt"
	"io"

	"github.com/csvcore/csvcore/internal/bind"
	"github.com/csvcore/csvcore/internal/scanner"
	"github.com/csvcore/csvcore/internal/source"
)

// Progress reports periodic decode status, per spec's "optional progress
// reporting" note: estimated_total is computed once from
// count_newlines_approx over the whole source at start, so it is an
// approximation, not an exact row count.
type Progress struct {
	RowsDecoded    int64
	EstimatedTotal int64
	BytesProcessed int64
	TotalBytes     int64
}

// Result carries one decoded record or the error that occurred decoding it.
// A non-nil Err for one Result does not stop the stream: StreamDecoder
// keeps producing subsequent rows (matching encoding/csv's row-at-a-time
// recovery posture), except for fatal, stream-ending conditions such as an
// unterminated quote or a context cancellation, which close the channel
// after the final Result.
type Result[T any] struct {
	Value T
	Err   error
}

// StreamDecoder is a goroutine-plus-channel producer implementing C9: Go's
// substitute for a single-threaded cooperative async iterator. One producer
// goroutine walks the RowParser and binds each row into T, feeding a
// buffered channel; a sync.Mutex/sync.Cond-backed backpressureController
// parks the producer once too many decoded rows are buffered ahead of the
// consumer.
type StreamDecoder[T any] struct {
	cfg      DecodeConfig
	src      *source.MappedSource
	produced chan Result[T]
	results  chan Result[T]
	progCh   chan Progress
	bp       *backpressureController
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewStreamDecoder opens r fully (via an internal MappedSource), resolves
// headers from the first row per cfg.HasHeaders, and starts the producer
// goroutine. Canceling ctx stops production; Close releases the source.
func NewStreamDecoder[T any](ctx context.Context, r io.Reader, cfg DecodeConfig) (*StreamDecoder[T], error) {
	src, err := source.FromReader(r)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	return newStreamDecoderFromSource[T](ctx, src, cfg)
}

// NewStreamDecoderBytes is NewStreamDecoder over an already-owned buffer,
// avoiding a copy when the caller already holds the full input in memory.
func NewStreamDecoderBytes[T any](ctx context.Context, data []byte, cfg DecodeConfig) (*StreamDecoder[T], error) {
	return newStreamDecoderFromSource[T](ctx, source.FromBytes(data), cfg)
}

func newStreamDecoderFromSource[T any](ctx context.Context, src *source.MappedSource, cfg DecodeConfig) (*StreamDecoder[T], error) {
	if src.Len() > DefaultMaxInputSize {
		src.Close()
		return nil, ErrInputTooLarge
	}
	normalized, err := source.NormalizeBOM(src.Bytes())
	if err != nil {
		src.Close()
		return nil, &IOError{Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	d := &StreamDecoder[T]{
		cfg:      cfg,
		src:      src,
		produced: make(chan Result[T], max(1, cfg.Memory.BatchSize)),
		results:  make(chan Result[T]),
		progCh:   make(chan Progress, 1),
		bp:       newBackpressureController(cfg.Memory),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	estimatedTotal := int64(scanner.CountNewlinesApprox(normalized))
	totalBytes := int64(len(normalized))

	go func() {
		<-ctx.Done()
		d.bp.close()
	}()
	go d.relay(ctx)
	go d.run(ctx, normalized, estimatedTotal, totalBytes)
	return d, nil
}

// relay forwards decoded rows from the producer's internal buffer to the
// public Results channel, releasing each row from the backpressure
// controller's accounting as it hands off to the consumer — the mirror of
// run()'s bp.add(1), closing the loop the controller needs to ever wake a
// parked producer.
func (d *StreamDecoder[T]) relay(ctx context.Context) {
	defer close(d.results)
	for {
		select {
		case r, ok := <-d.produced:
			if !ok {
				return
			}
			select {
			case d.results <- r:
				d.bp.release(1)
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Results returns the channel of decoded records. It is closed once the
// source is exhausted, a fatal error occurs, or ctx is canceled.
func (d *StreamDecoder[T]) Results() <-chan Result[T] { return d.results }

// Progress returns a channel receiving periodic Progress updates. It is
// closed alongside Results.
func (d *StreamDecoder[T]) Progress() <-chan Progress { return d.progCh }

// Close cancels production and releases the underlying source. Safe to call
// after the Results channel has already drained to closed.
func (d *StreamDecoder[T]) Close() error {
	d.cancel()
	d.bp.close()
	<-d.done
	return d.src.Close()
}

func (d *StreamDecoder[T]) run(ctx context.Context, data []byte, estimatedTotal, totalBytes int64) {
	defer close(d.done)
	defer close(d.produced)
	defer close(d.progCh)

	parser := NewRowParser(data, d.cfg.Delimiter, d.cfg.Mode)
	headers, pending, err := resolveHeaders[T](parser, d.cfg.HasHeaders)
	if err != nil {
		d.emit(ctx, Result[T]{Err: err})
		return
	}

	bindCfg := bindConfigFrom(d.cfg)
	rowNum := 0
	emittedSinceProgress := 0

	emitRow := func(row bind.Row) bool {
		rowNum++
		d.bp.add(1)
		var dest T
		if errs := bind.Bind(&dest, row, headers, bindCfg, rowNum); len(errs) > 0 {
			if !d.emit(ctx, Result[T]{Err: convertBindErrors(rowNum, errs)}) {
				return false
			}
		} else if !d.emit(ctx, Result[T]{Value: dest}) {
			return false
		}
		emittedSinceProgress++
		if emittedSinceProgress >= progressBatchRows {
			emittedSinceProgress = 0
			select {
			case d.progCh <- Progress{
				RowsDecoded:    int64(rowNum),
				EstimatedTotal: estimatedTotal,
				BytesProcessed: int64(parser.Pos()),
				TotalBytes:     totalBytes,
			}:
			default:
			}
		}
		return true
	}

	if pending != nil {
		if !emitRow(pending) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		row, err := parser.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			if !d.emit(ctx, Result[T]{Err: err}) {
				return
			}
			if row == nil || row.UnterminatedQuote {
				return
			}
			continue
		}
		if row.UnterminatedQuote {
			loc := Location{Row: rowNum + 1, ColumnIndex: row.UnterminatedQuoteColumn}
			d.emit(ctx, Result[T]{Err: &ParsingError{Message: "Unterminated quoted field", Location: loc}})
			return
		}
		if !emitRow(row) {
			return
		}
	}
}

// progressBatchRows sets how often Progress is published; matching
// MemoryLimitConfig's default batch_size keeps the two update cadences
// aligned.
const progressBatchRows = 256

func (d *StreamDecoder[T]) emit(ctx context.Context, r Result[T]) bool {
	select {
	case d.produced <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// plainRow adapts a materialized []string (used for the first row when
// headerless mode treats it as data) to bind.Row.
type plainRow struct{ fields []string }

func (r plainRow) FieldCount() int { return len(r.fields) }
func (r plainRow) Field(i int) (string, bool) {
	if i < 0 || i >= len(r.fields) {
		return "", false
	}
	return r.fields[i], true
}

// resolveHeaders reads the first row to build a HeaderMap, per §4.9: either
// that row supplies header names, or (headerless mode) a synthetic
// column{i} map is generated and the row itself is returned as the first
// data row via pending, materialized into owned strings since a RowView
// aliases scratch storage reused by the next Next() call.
func resolveHeaders[T any](parser *RowParser, hasHeaders bool) (headers bind.HeaderMap, pending bind.Row, err error) {
	row, err := parser.Next()
	if err == io.EOF {
		return bind.HeaderMap{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if hasHeaders {
		headers = make(bind.HeaderMap, row.FieldCount())
		for i := 0; i < row.FieldCount(); i++ {
			name, _ := row.Field(i)
			headers[name] = i
		}
		return headers, nil, nil
	}

	fields := make([]string, row.FieldCount())
	headers = make(bind.HeaderMap, row.FieldCount())
	for i := 0; i < row.FieldCount(); i++ {
		name, _ := row.Field(i)
		fields[i] = name
		headers[fmt.Sprintf("column%d", i)] = i
	}
	return headers, plainRow{fields: fields}, nil
}

func bindConfigFrom(cfg DecodeConfig) bind.Config {
	return bind.Config{
		KeyStrategy:    bind.KeyStrategy{Kind: bind.KeyStrategyKind(cfg.KeyStrategy.Kind), Custom: cfg.KeyStrategy.Custom},
		NestedStrategy: bind.NestedStrategy{Kind: bind.NestedStrategyKind(cfg.NestedStrategy.Kind), Separator: cfg.NestedStrategy.Separator},
		ColumnMapping:  cfg.ColumnMapping,
		IndexMapping:   cfg.IndexMapping,
		TrimWhitespace: cfg.TrimWhitespace,
		HasHeaders:     cfg.HasHeaders,
		NilStrategy:    toValueparseNil(cfg.NilStrategy),
		BoolStrategy:   toValueparseBool(cfg.BoolStrategy),
		NumberStrategy: toValueparseNumber(cfg.NumberStrategy),
		DateStrategy:   toValueparseDate(cfg.DateStrategy),
	}
}

// convertBindErrors converts internal/bind's error taxonomy into the root
// package's exported DecodingError types, aggregating multiple field
// failures in one row behind RowErrors.
func convertBindErrors(rowNum int, errs []error) error {
	agg := &RowErrors{Row: rowNum}
	for _, e := range errs {
		agg.add(convertBindError(e))
	}
	return agg.asError()
}

func convertBindError(e error) error {
	switch v := e.(type) {
	case *bind.KeyNotFoundError:
		return &KeyNotFoundError{
			Name:      v.Name,
			Location:  Location{Row: v.Row, Column: v.Column},
			Available: v.Available,
		}
	case *bind.TypeMismatchError:
		return &TypeMismatchError{
			Expected: v.Expected,
			Actual:   v.Actual,
			Location: Location{Row: v.Row, Column: v.Column},
		}
	case *bind.ParsingError:
		return &ParsingError{
			Message:  v.Message,
			Location: Location{Row: v.Row, Column: v.Column},
			Err:      v.Err,
		}
	case *bind.UnsupportedError:
		return &UnsupportedError{Message: v.Message}
	default:
		return e
	}
}

// Decode is a convenience wrapper around StreamDecoder that drains the
// entire stream into a slice, stopping at the first error.
func Decode[T any](ctx context.Context, r io.Reader, cfg DecodeConfig) ([]T, error) {
	d, err := NewStreamDecoder[T](ctx, r, cfg)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var out []T
	for res := range d.Results() {
		if res.Err != nil {
			return out, res.Err
		}
		out = append(out, res.Value)
	}
	return out, nil
}
