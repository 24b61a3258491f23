// Package batch accumulates filing documents into fixed-size batches and
// flushes each batch to a sink in a single write, either as newline-delimited
// JSON or as an unordered Mongo bulk insert.
package batch

import (
	"context"
	"log/slog"
)

// Threshold is the batch size. Configurable only by editing the constant.
const Threshold = 10000

// progressEvery bounds log volume on multi-million-row inputs.
const progressEvery = 50000

// Sink flushes one batch and reports how many documents actually landed.
// A sink may report fewer than it was given without returning an error when
// individual documents fail but the batch as a whole went through.
type Sink interface {
	Write(ctx context.Context, docs []any) (int, error)
}

type Writer struct {
	sink     Sink
	pending  []any
	rows     int
	inserted int
}

func NewWriter(sink Sink) *Writer {
	return &Writer{sink: sink, pending: make([]any, 0, Threshold)}
}

// Add queues one document, flushing when the batch reaches Threshold. An
// exactly-full batch flushes here, not at Close.
func (w *Writer) Add(ctx context.Context, doc any) error {
	w.pending = append(w.pending, doc)
	w.rows++
	if w.rows%progressEvery == 0 {
		slog.InfoContext(ctx, "processed rows", "rows", w.rows)
	}
	if len(w.pending) >= Threshold {
		return w.flush(ctx)
	}
	return nil
}

// Close flushes any partial final batch.
func (w *Writer) Close(ctx context.Context) error {
	return w.flush(ctx)
}

func (w *Writer) flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}

	n, err := w.sink.Write(ctx, w.pending)
	w.inserted += n
	// the batch is cleared even on error, a failed batch is never retried
	w.pending = w.pending[:0]
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "batch flushed", "batch", n, "total", w.inserted)
	return nil
}

// Rows is the number of documents fed in.
func (w *Writer) Rows() int { return w.rows }

// Written is the cumulative count of documents the sink reported written.
func (w *Writer) Written() int { return w.inserted }
