// Package output writes the person-level analytic file, either as
// Parquet for query engines and the Postgres loader, or as CSV for the
// statistical packages consuming it downstream.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"mepslink/meps"
)

// PersonWriter writes PersonRow records to a Parquet file configured for
// analytical reads: zstd compression, page statistics for predicate
// pushdown. The file is small by parquet standards (one row per sampled
// person), so the defaults lean toward compatibility over tuning.
type PersonWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[meps.PersonRow]
	count  int
}

// NewPersonWriter creates a Parquet writer for the analytic file.
func NewPersonWriter(path string) (*PersonWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[meps.PersonRow](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.DataPageStatistics(true),
		parquet.CreatedBy("mepslink", "1.0", ""),
	)

	return &PersonWriter{file: file, writer: writer}, nil
}

// Write writes a batch of rows.
func (w *PersonWriter) Write(rows []meps.PersonRow) (int, error) {
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Close flushes the final row group and closes the file.
func (w *PersonWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the total number of rows written.
func (w *PersonWriter) Count() int { return w.count }

// ReadPersonRows reads a whole analytic Parquet file back into memory.
func ReadPersonRows(path string) ([]meps.PersonRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[meps.PersonRow](f)
	defer reader.Close()

	rows := make([]meps.PersonRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows[:n], nil
}
