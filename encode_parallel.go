package csvcore

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/csvcore/csvcore/internal/bind"
)

// EncodeParallel implements C14: records (a bounded, random-access slice —
// parallel encode needs indexable input, unlike the streaming C13 path)
// are split into ceil(count/chunk_rows) chunks. Each worker renders its
// chunk's rows into its own in-memory byte buffer; because chunk→slot is
// static (worker i always owns slot i), no ordered-drain map is needed the
// way C10's parallel decode requires one. A single final pass writes the
// slots through the Sink in order. The header, derived from records[0], is
// written sequentially before any chunk.
func EncodeParallel[T any](ctx context.Context, w io.Writer, records []T, cfg EncodeConfig) error {
	if len(records) == 0 {
		return nil
	}
	parallelism := cfg.Parallel.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism()
	}
	chunkRows := cfg.Parallel.ChunkRows
	if chunkRows <= 0 {
		chunkRows = DefaultParallelConfig().ChunkRows
	}

	bindCfg := encodeBindConfigFrom(cfg)
	headers, err := bind.Destructure(&records[0], bindCfg, nil)
	if err != nil {
		return convertBindError(err)
	}

	numChunks := (len(records) + chunkRows - 1) / chunkRows
	slots := make([][]byte, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for c := 0; c < numChunks; c++ {
		c := c
		start := c * chunkRows
		end := start + chunkRows
		if end > len(records) {
			end = len(records)
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			buf, err := renderChunk(records[start:end], bindCfg, cfg)
			if err != nil {
				return err
			}
			slots[c] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sink := NewSink(w)
	defer sink.Close()

	if cfg.HasHeaders {
		headerWriter := NewWriter(sink)
		headerWriter.Comma = cfg.Delimiter
		headerWriter.LineEnding = cfg.LineEnding
		if err := headerWriter.Write(transformHeaderRow(headers, cfg.KeyStrategy)); err != nil {
			return &IOError{Err: err}
		}
		if err := headerWriter.Flush(); err != nil {
			return &IOError{Err: err}
		}
	}
	for _, slot := range slots {
		if _, err := sink.Write(slot); err != nil {
			return &IOError{Err: err}
		}
	}
	return nil
}

// renderChunk writes records through a private Writer into its own
// bytes.Buffer (no Sink), so concurrent workers never share a buffer.
func renderChunk[T any](records []T, bindCfg bind.Config, cfg EncodeConfig) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Comma = cfg.Delimiter
	w.LineEnding = cfg.LineEnding

	for i := range records {
		values, err := bind.Values(&records[i], bindCfg)
		if err != nil {
			return nil, convertBindError(err)
		}
		if err := w.Write(values); err != nil {
			return nil, &IOError{Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return nil, &IOError{Err: err}
	}
	return buf.Bytes(), nil
}
