package import_pkg

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hjs-etl/internal/normalize"
)

// HeaderScanRows is how many leading rows are searched for the header.
const HeaderScanRows = 10

// Workbook is an open spreadsheet file.
type Workbook struct {
	path string
	file *excelize.File
}

// OpenWorkbook opens an .xlsx file.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// FirstSheet returns the first sheet name, or "" for an empty workbook.
func (w *Workbook) FirstSheet() string {
	sheets := w.Sheets()
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}

// SheetsContaining returns the sheets whose folded name contains any of the
// fragments, in workbook order.
func (w *Workbook) SheetsContaining(fragments ...string) []string {
	var out []string
	for _, sheet := range w.Sheets() {
		name := normalize.Fold(sheet)
		for _, frag := range fragments {
			if strings.Contains(name, normalize.Fold(frag)) {
				out = append(out, sheet)
				break
			}
		}
	}
	return out
}

// Rows returns every row of sheet as strings.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, w.path, err)
	}
	return rows, nil
}

// ReadTable reads sheet, locates its header with mapping.HeaderKeywords and
// resolves the mapped columns. found is false when the header fell back to
// the first row.
func (w *Workbook) ReadTable(sheet string, mapping SheetMapping) (table *Table, found bool, err error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, false, err
	}
	table, found = BuildTable(sheet, rows, mapping)
	return table, found, nil
}

// Table is a sheet split into its header and data rows.
type Table struct {
	Sheet     string
	HeaderRow int
	Header    []string
	Columns   Columns
	Rows      [][]string

	nameCols []int
	rejects  map[string]bool
}

// BuildTable splits rows at the detected header row (row 0 when no row
// matches) and resolves mapping's fields against it.
func BuildTable(sheet string, rows [][]string, mapping SheetMapping) (*Table, bool) {
	headerRow, found := DetectHeaderRow(rows, mapping.HeaderKeywords, HeaderScanRows)

	t := &Table{Sheet: sheet, HeaderRow: headerRow}
	if headerRow < len(rows) {
		t.Header = rows[headerRow]
		t.Rows = rows[headerRow+1:]
	}
	t.Columns = ResolveColumns(t.Header, mapping.Fields)

	if mapping.NameField != "" {
		t.nameCols = resolveAll(t.Header, mapping.Fields[mapping.NameField])
		t.rejects = make(map[string]bool, len(mapping.NameRejects))
		for _, r := range mapping.NameRejects {
			t.rejects[normalize.Fold(r)] = true
		}
	}
	return t, found
}

// Name returns the first usable value among the name columns, trying them in
// alias order. Repeated header words ("NOMBRE") and null tokens are not names.
func (t *Table) Name(row []string) string {
	for _, i := range t.nameCols {
		if i >= len(row) {
			continue
		}
		v := normalize.Cell(row[i])
		if normalize.IsNull(v) || t.rejects[normalize.Fold(v)] {
			continue
		}
		return v
	}
	return ""
}

// DetectHeaderRow returns the first of the leading limit rows whose joined,
// folded text contains at least one keyword of every group. Without groups,
// or when nothing matches, it returns (0, false).
func DetectHeaderRow(rows [][]string, groups [][]string, limit int) (int, bool) {
	if len(groups) == 0 {
		return 0, false
	}
	for i := 0; i < len(rows) && i < limit; i++ {
		text := normalize.Fold(strings.Join(rows[i], " "))
		if matchesAll(text, groups) {
			return i, true
		}
	}
	return 0, false
}

func matchesAll(text string, groups [][]string) bool {
	for _, group := range groups {
		hit := false
		for _, kw := range group {
			if strings.Contains(text, normalize.Fold(kw)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// resolveAll returns the positions of every alias present in header, in alias order.
func resolveAll(header []string, aliases []string) []int {
	var out []int
	seen := make(map[int]bool)
	for _, alias := range aliases {
		want := normalize.Fold(alias)
		for i, h := range header {
			if normalize.Fold(h) == want && !seen[i] {
				out = append(out, i)
				seen[i] = true
				break
			}
		}
	}
	return out
}
