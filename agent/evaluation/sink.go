package evaluation

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/BaSui01/verifyflow/types"
)

// Sink receives evaluation records one at a time. A Write error aborts
// the batch. Close is called exactly once when the batch ends.
type Sink interface {
	Write(ctx context.Context, rec types.EvaluationRecord) error
	Close() error
}

// ====== CSV ======

// CSVSink writes records as UTF-8 CSV, header first, flushing after
// every row.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVSink writes the header to w. If w is an io.Closer it is closed by
// Close.
func NewCSVSink(w io.Writer) (*CSVSink, error) {
	s := &CSVSink{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	if err := s.writeRow(types.RecordHeader()); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	return s, nil
}

// CreateCSVSink creates (or truncates) path and returns a sink writing to it.
func CreateCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create result file: %w", err)
	}
	s, err := NewCSVSink(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Write appends one row and flushes it.
func (s *CSVSink) Write(_ context.Context, rec types.EvaluationRecord) error {
	return s.writeRow(rec.Row())
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Close flushes and releases the underlying writer.
func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
	}
	return err
}
