package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ParquetReader streams rows from an enriched Parquet file.
type ParquetReader struct {
	path   string
	file   *os.File
	reader *parquet.GenericReader[EnrichedRecord]
}

// OpenEnrichedParquet opens a file written by the enriched Parquet export.
func OpenEnrichedParquet(path string) (*ParquetReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &ParquetReader{
		path:   path,
		file:   f,
		reader: parquet.NewGenericReader[EnrichedRecord](f),
	}, nil
}

// NumRows returns the row count from the file footer.
func (r *ParquetReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read fills buf and returns how many rows it holds. It returns io.EOF
// once the file is exhausted, possibly together with n > 0.
func (r *ParquetReader) Read(buf []EnrichedRecord) (int, error) {
	n, err := r.reader.Read(buf)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet %s: %w", r.path, err)
	}
	return n, err
}

func (r *ParquetReader) Close() error {
	r.reader.Close()
	return r.file.Close()
}

// ReadEnrichedParquet reads every row of an enriched Parquet file.
func ReadEnrichedParquet(path string) ([]EnrichedRecord, error) {
	r, err := OpenEnrichedParquet(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows := make([]EnrichedRecord, 0, r.NumRows())
	buf := make([]EnrichedRecord, 1024)
	for {
		clear(buf)
		n, err := r.Read(buf)
		rows = append(rows, buf[:n]...)
		if err == io.EOF || (err == nil && n == 0) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
