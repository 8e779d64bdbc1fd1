package db

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/segmentio/parquet-go"

	"github.com/mathysgrapotte/bio2parquet/schema"
)

const (
	MaxPageSize = 8 * 1024

	DefaultBatchSize = 1000

	DataFileSuffix     = ".parquet"
	MetadataFileSuffix = ".metadata"
)

// SerializationError reports a record that could not be coerced into the
// columnar schema, for example a sequence with characters outside the
// declared alphabet.
type SerializationError struct {
	Identifier string
	Err        error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed serializing record %q: %v", e.Identifier, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

type WriterOption func(*Writer)

func WithBatchSize(n int) WriterOption {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithPageBufferSize(n int) WriterOption {
	return func(w *Writer) {
		w.pageBufferSize = n
	}
}

// WithAlphabet enables sequence validation against the given alphabet.
func WithAlphabet(a *schema.Alphabet) WriterOption {
	return func(w *Writer) {
		w.alphabet = a
	}
}

// Writer accumulates records into batches and appends each full batch to the
// output as one row group. Rows are never sorted: output order mirrors
// append order.
type Writer struct {
	schema *schema.RecordSchema
	writer *parquet.GenericWriter[any]
	rows   []parquet.Row

	batchSize      int
	pageBufferSize int
	alphabet       *schema.Alphabet

	numRecords int64
	numBatches int64
}

func NewWriter(w io.Writer, recordSchema *schema.RecordSchema, option ...WriterOption) *Writer {
	writer := &Writer{
		schema:         recordSchema,
		batchSize:      DefaultBatchSize,
		pageBufferSize: MaxPageSize,
	}
	for _, opt := range option {
		opt(writer)
	}
	writer.rows = make([]parquet.Row, 0, writer.batchSize)
	writer.writer = writer.openWriter(w)

	return writer
}

func (w *Writer) Write(rec schema.Record) error {
	if w.alphabet != nil {
		if err := w.alphabet.Validate(rec.Sequence); err != nil {
			return &SerializationError{Identifier: rec.Identifier, Err: err}
		}
	}

	w.rows = append(w.rows, w.schema.MakeRow(rec))
	w.numRecords++

	if len(w.rows) >= w.batchSize {
		return w.flushBatch()
	}
	return nil
}

func (w *Writer) Flush() error {
	return w.flushBatch()
}

// Close flushes the final partial batch and writes the file footer. An empty
// writer still produces a valid zero-row file carrying the full schema.
func (w *Writer) Close() error {
	if err := w.flushBatch(); err != nil {
		return err
	}
	return w.writer.Close()
}

func (w *Writer) NumRecords() int64 { return w.numRecords }

func (w *Writer) NumBatches() int64 { return w.numBatches }

func (w *Writer) flushBatch() error {
	if len(w.rows) == 0 {
		return nil
	}
	defer func() {
		w.rows = w.rows[:0]
	}()

	if _, err := w.writer.WriteRows(w.rows); err != nil {
		return errors.Wrap(err, "failed writing rows")
	}
	if err := w.writer.Flush(); err != nil {
		return errors.Wrap(err, "failed flushing row group")
	}
	w.numBatches++
	return nil
}

func (w *Writer) openWriter(f io.Writer) *parquet.GenericWriter[any] {
	return parquet.NewGenericWriter[any](f,
		w.schema.ParquetSchema(),
		parquet.DefaultWriterConfig(),
		parquet.PageBufferSize(w.pageBufferSize),
		parquet.DataPageStatistics(true),
		parquet.BloomFilters(parquet.SplitBlockFilter(10, schema.IdentifierColumn)),
	)
}
