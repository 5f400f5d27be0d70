package import_pkg

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// RowsPerPage is the pseudo-page size of a CSV table export, so that exports
// commit on the same cadence as the PDF they came from.
const RowsPerPage = 40

// PageSource yields a tabular document one page at a time. Pages are 1-based.
type PageSource interface {
	NumPages() int
	PageRows(page int) ([][]string, error)
	Close() error
}

// OpenPages picks the reader by file extension: .pdf or a .csv/.txt export
// of the same table.
func OpenPages(path string) (PageSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return OpenPDF(path)
	case ".csv", ".txt":
		return OpenCSVPages(path, RowsPerPage)
	default:
		return nil, fmt.Errorf("unsupported table document %s", path)
	}
}

// PDFPages extracts table rows from a PDF text layer.
type PDFPages struct {
	file   *os.File
	reader *pdf.Reader
}

// OpenPDF opens a PDF for page-wise row extraction.
func OpenPDF(path string) (*PDFPages, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	return &PDFPages{file: f, reader: r}, nil
}

func (p *PDFPages) NumPages() int {
	return p.reader.NumPage()
}

// PageRows returns the text rows of a page split into cells. The text layer
// has no table structure, so cells are recovered from horizontal gaps between
// text runs; wrapped cells spanning two lines come back as separate rows and
// are dropped by the row-shape check downstream.
func (p *PDFPages) PageRows(page int) (rows [][]string, err error) {
	// malformed content streams panic inside the parser
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("page %d: %v", page, r)
		}
	}()

	pg := p.reader.Page(page)
	if pg.V.IsNull() {
		return nil, nil
	}

	textRows, err := pg.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	for _, tr := range textRows {
		if cells := GroupCells(tr.Content); len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows, nil
}

func (p *PDFPages) Close() error {
	return p.file.Close()
}

const (
	// gaps wider than this many font sizes start a new cell
	cellGapFactor = 1.2
	// gaps wider than this many font sizes inside a cell are a word space
	wordGapFactor = 0.15
	defaultFont   = 8.0
)

// GroupCells joins the text runs of one visual line into cells by X position.
func GroupCells(runs []pdf.Text) []string {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var cur strings.Builder
	end := math.Inf(-1)

	for _, t := range sorted {
		size := t.FontSize
		if size <= 0 {
			size = defaultFont
		}
		gap := t.X - end
		switch {
		case cur.Len() > 0 && gap > cellGapFactor*size:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		case cur.Len() > 0 && gap > wordGapFactor*size:
			cur.WriteByte(' ')
		}
		cur.WriteString(t.S)
		end = t.X + t.W
	}
	if cur.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cur.String()))
	}
	return cells
}

// CSVPages serves a CSV export of a table in fixed-size pseudo-pages,
// streaming rows from disk. Pages must be read in order.
type CSVPages struct {
	file    *os.File
	reader  *csv.Reader
	records int
	perPage int
	next    int
}

// OpenCSVPages counts the export's records in one pass and rewinds for the
// page reads. The delimiter (';' or ',') is taken from whichever is more
// frequent on the first line.
func OpenCSVPages(path string, perPage int) (*CSVPages, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	line := string(first)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	comma := ','
	if strings.Count(line, ";") > strings.Count(line, ",") {
		comma = ';'
	}

	counter := newPageReader(br, comma)
	counter.ReuseRecord = true
	records := 0
	for {
		_, err := counter.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		records++
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	if perPage <= 0 {
		perPage = RowsPerPage
	}
	return &CSVPages{
		file:    f,
		reader:  newPageReader(bufio.NewReader(f), comma),
		records: records,
		perPage: perPage,
		next:    1,
	}, nil
}

func newPageReader(r io.Reader, comma rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func (c *CSVPages) NumPages() int {
	return (c.records + c.perPage - 1) / c.perPage
}

func (c *CSVPages) PageRows(page int) ([][]string, error) {
	if page < 1 || page > c.NumPages() {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, c.NumPages())
	}
	if page != c.next {
		return nil, fmt.Errorf("page %d requested, next page is %d", page, c.next)
	}
	c.next++

	rows := make([][]string, 0, c.perPage)
	for len(rows) < c.perPage {
		rec, err := c.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("page %d: %w", page, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func (c *CSVPages) Close() error {
	return c.file.Close()
}
