package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVReader streams a delimited file row by row and resolves columns by
// header name. Lookups are case-insensitive and ignore surrounding spaces.
type CSVReader struct {
	path    string
	file    *os.File
	gz      *gzip.Reader
	csv     *csv.Reader
	rowNum  int64
	headers []string
	colIdx  map[string]int // lowercase header → column index
}

// NewCSVReader opens path and consumes its header row. Files ending in .gz
// are decompressed on the fly.
func NewCSVReader(path string) (*CSVReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	var gz *gzip.Reader
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err = gzip.NewReader(bufReader)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		bufReader = bufio.NewReaderSize(gz, 256*1024)
	}

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	r := &CSVReader{
		path:   path,
		file:   file,
		gz:     gz,
		csv:    reader,
		colIdx: make(map[string]int),
	}

	if err := r.readHeaders(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *CSVReader) readHeaders() error {
	headerRow, err := r.csv.Read()
	if err == io.EOF {
		return fmt.Errorf("read header %s: empty file", r.path)
	}
	if err != nil {
		return fmt.Errorf("read header %s: %w", r.path, err)
	}
	r.rowNum++

	r.headers = make([]string, len(headerRow))
	for i, h := range headerRow {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		r.headers[i] = h
		key := strings.ToLower(h)
		// First occurrence wins on duplicate headers.
		if _, ok := r.colIdx[key]; !ok {
			r.colIdx[key] = i
		}
	}
	return nil
}

// Column returns the index of the named column.
func (r *CSVReader) Column(name string) (int, bool) {
	i, ok := r.colIdx[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// Require resolves every named column or reports the first one missing.
func (r *CSVReader) Require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		c, ok := r.Column(name)
		if !ok {
			return nil, fmt.Errorf("%s: missing column %q (have %s)", r.path, name, strings.Join(r.Headers(), ", "))
		}
		idx[i] = c
	}
	return idx, nil
}

// Next returns the next data row, or io.EOF after the last one.
func (r *CSVReader) Next() ([]string, error) {
	row, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%s row %d: %w", r.path, r.rowNum+1, err)
	}
	r.rowNum++
	return row, nil
}

// Headers returns the trimmed header names in file order.
func (r *CSVReader) Headers() []string {
	return r.headers
}

// RowNum returns the 1-based number of the last row read, header included.
func (r *CSVReader) RowNum() int64 {
	return r.rowNum
}

func (r *CSVReader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// valAt returns the trimmed cell at i, or "" when the row is short.
func valAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
