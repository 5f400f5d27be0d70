package import_pkg

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hjs-etl/internal/normalize"
)

// Record is one data row addressed by header name.
type Record struct {
	Line   int
	fields map[string]int
	values []string
}

// Get returns the trimmed value of a column, or "" when the column is absent
// from the file or the row is short.
func (r Record) Get(column string) string {
	i, ok := r.fields[strings.ToLower(column)]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

// Has reports whether the file declared the column.
func (r Record) Has(column string) bool {
	_, ok := r.fields[strings.ToLower(column)]
	return ok
}

// Optional is Get with null tokens mapped to nil.
func (r Record) Optional(column string) *string {
	return normalize.Optional(r.Get(column))
}

// CSVReader streams a delimited file with a header line.
type CSVReader struct {
	file   *os.File
	reader *csv.Reader
	header []string
	fields map[string]int
	line   int
}

// OpenCSV opens path and reads its header. Exports from the registry systems
// use ';' with '"' quoting; relation files written by this tool use ','.
func OpenCSV(path string, sep rune) (*CSVReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	reader := csv.NewReader(bufio.NewReaderSize(file, 1<<20))
	reader.Comma = sep
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	fields := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := fields[col]; !dup {
			fields[col] = i
		}
	}

	return &CSVReader{file: file, reader: reader, header: header, fields: fields, line: 1}, nil
}

// Require fails when any of the columns is missing from the header.
func (c *CSVReader) Require(columns ...string) error {
	var missing []string
	for _, col := range columns {
		if _, ok := c.fields[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns %v in header %v", missing, c.header)
	}
	return nil
}

// Next returns the next record, io.EOF at the end, or a *RowError for a
// malformed line (the reader stays usable).
func (c *CSVReader) Next() (Record, error) {
	values, err := c.reader.Read()
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			c.line = pe.Line
		}
		return Record{}, &RowError{Line: c.line, Err: err}
	}
	c.line, _ = c.reader.FieldPos(0)
	return Record{Line: c.line, fields: c.fields, values: values}, nil
}

// Close releases the file.
func (c *CSVReader) Close() error {
	return c.file.Close()
}
