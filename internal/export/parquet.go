package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"neiss/internal/dataset"
)

// Version is stamped into the created_by field of written Parquet files.
// Release builds set it with -ldflags "-X neiss/internal/export.Version=v1.2.0".
var Version = "dev"

// WriteParquet writes rows to path. Every batchSize rows close one row
// group, so a later "neiss load" with the same batch size copies whole row
// groups per transaction. batchSize <= 0 writes a single row group.
func WriteParquet(path string, rows []dataset.EnrichedRecord, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = max(len(rows), 1)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}
	w := parquet.NewGenericWriter[dataset.EnrichedRecord](f, writerOptions(batchSize)...)

	written := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		n, err := w.Write(rows[start:end])
		written += n
		if err != nil {
			w.Close()
			f.Close()
			return written, fmt.Errorf("write parquet rows %d-%d: %w", start+1, end, err)
		}
	}

	if err := w.Close(); err != nil {
		f.Close()
		return written, fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", path, err)
	}
	return written, nil
}

// Label columns are optional so unmatched codes round-trip as nulls. Page
// statistics let readers skip pages on diagnosis or disposition filters.
func writerOptions(rowGroupRows int) []parquet.WriterOption {
	return []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.DataPageStatistics(true),
		parquet.MaxRowsPerRowGroup(int64(rowGroupRows)),
		parquet.CreatedBy("neiss", Version, ""),
	}
}
