package csvcore

import (
	"io"

	"github.com/csvcore/csvcore/internal/bind"
)

// StreamEncoder is C13: a single-threaded cooperative consumer of an
// "async record sequence", realized in Go as a <-chan T. The header row is
// derived from the first record's encountered key order and written once
// (if cfg.HasHeaders); every subsequent record is written against that same
// fixed column set — an unseen key is simply never written, and a nil
// pointer field for a known column is written as an empty string;
// EncodeConfig has no option that changes this nil representation.
type StreamEncoder[T any] struct {
	cfg     EncodeConfig
	w       *Writer
	sink    *Sink
	headers []string
	wrote   bool
}

// NewStreamEncoder wraps w with a buffered Sink and a row Writer.
func NewStreamEncoder[T any](w io.Writer, cfg EncodeConfig) *StreamEncoder[T] {
	sink := NewSink(w)
	writer := NewWriter(sink)
	writer.Comma = cfg.Delimiter
	writer.LineEnding = cfg.LineEnding
	return &StreamEncoder[T]{cfg: cfg, w: writer, sink: sink}
}

// Encode drains records, writing a header row (once, from the first
// record's field order) and one row per record. It stops at the first
// error, and always flushes and closes the sink before returning.
func (e *StreamEncoder[T]) Encode(records <-chan T) error {
	defer e.sink.Close()
	for rec := range records {
		if err := e.encodeOne(rec); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

// EncodeFunc drains an iterator function (the Go 1.23+ range-over-func
// shape) instead of a channel.
func (e *StreamEncoder[T]) EncodeFunc(seq func(yield func(T) bool)) error {
	defer e.sink.Close()
	var encErr error
	seq(func(rec T) bool {
		if err := e.encodeOne(rec); err != nil {
			encErr = err
			return false
		}
		return true
	})
	if encErr != nil {
		return encErr
	}
	return e.w.Flush()
}

func (e *StreamEncoder[T]) encodeOne(rec T) error {
	bindCfg := encodeBindConfigFrom(e.cfg)
	if !e.wrote {
		headers, err := bind.Destructure(&rec, bindCfg, nil)
		if err != nil {
			return convertBindError(err)
		}
		e.headers = headers
		e.wrote = true
		if e.cfg.HasHeaders {
			if err := e.w.Write(transformHeaderRow(headers, e.cfg.KeyStrategy)); err != nil {
				return &IOError{Err: err}
			}
		}
	}
	values, err := bind.Values(&rec, bindCfg)
	if err != nil {
		return convertBindError(err)
	}
	if err := e.w.Write(values); err != nil {
		return &IOError{Err: err}
	}
	return nil
}

func transformHeaderRow(headers []string, strategy KeyStrategy) []string {
	if strategy.Custom == nil {
		return headers
	}
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strategy.Custom(h)
	}
	return out
}

func encodeBindConfigFrom(cfg EncodeConfig) bind.Config {
	return bind.Config{
		KeyStrategy:    bind.KeyStrategy{Kind: bind.KeyStrategyKind(cfg.KeyStrategy.Kind), Custom: cfg.KeyStrategy.Custom},
		HasHeaders:     cfg.HasHeaders,
		BoolStrategy:   toValueparseBool(cfg.BoolStrategy),
		NumberStrategy: toValueparseNumber(cfg.NumberStrategy),
		DateStrategy:   toValueparseDate(cfg.DateStrategy),
	}
}

// Encode is a convenience wrapper draining an already-materialized slice
// through a StreamEncoder.
func Encode[T any](w io.Writer, records []T, cfg EncodeConfig) error {
	enc := NewStreamEncoder[T](w, cfg)
	ch := make(chan T)
	go func() {
		defer close(ch)
		for _, r := range records {
			ch <- r
		}
	}()
	return enc.Encode(ch)
}
