package import_pkg

import (
	"reflect"
	"testing"

	"github.com/ledongthuc/pdf"
)

func glyphs(x float64, s string) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{FontSize: 8, X: x, W: 4, S: string(r)})
		x += 4
	}
	return out
}

func TestGroupCells(t *testing.T) {
	var runs []pdf.Text
	runs = append(runs, glyphs(100, "001")...)
	runs = append(runs, glyphs(10, "05")...)
	runs = append(runs, glyphs(200, "PUESTO")...)
	// word space: 2pt gap
	runs = append(runs, glyphs(226, "1")...)

	got := GroupCells(runs)
	want := []string{"05", "001", "PUESTO 1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupCells() = %q, want %q", got, want)
	}

	if GroupCells(nil) != nil {
		t.Error("GroupCells(nil) should be nil")
	}
}

func TestCSVPages(t *testing.T) {
	path := writeFile(t, "divipole.csv",
		"DD;MM;ZZ\n05;001;01\n05;002;01\n05;003;01\n05;004;01\n05;005;01\n")

	src, err := OpenPages(path)
	if err != nil {
		t.Fatalf("OpenPages() error = %v", err)
	}
	defer src.Close()

	pages, ok := src.(*CSVPages)
	if !ok {
		t.Fatalf("OpenPages(.csv) = %T", src)
	}
	pages.perPage = 4

	if pages.NumPages() != 2 {
		t.Fatalf("NumPages() = %d, want 2", pages.NumPages())
	}
	first, err := pages.PageRows(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 4 || first[1][1] != "001" {
		t.Errorf("page 1 = %v", first)
	}
	last, _ := pages.PageRows(2)
	if len(last) != 2 || last[1][1] != "005" {
		t.Errorf("page 2 = %v", last)
	}
	if _, err := pages.PageRows(3); err == nil {
		t.Error("PageRows(3) should be out of range")
	}
}

func TestCSVPagesInOrderOnly(t *testing.T) {
	path := writeFile(t, "divipole.csv", "DD,MM\n05,001\n05,002\n05,003\n")

	pages, err := OpenCSVPages(path, 2)
	if err != nil {
		t.Fatalf("OpenCSVPages() error = %v", err)
	}
	defer pages.Close()

	if pages.NumPages() != 2 {
		t.Fatalf("NumPages() = %d, want 2", pages.NumPages())
	}
	if _, err := pages.PageRows(2); err == nil {
		t.Error("PageRows(2) before page 1 should fail")
	}
	first, err := pages.PageRows(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || first[0][0] != "DD" || first[1][1] != "001" {
		t.Errorf("page 1 = %v", first)
	}
	second, err := pages.PageRows(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 2 || second[1][1] != "003" {
		t.Errorf("page 2 = %v", second)
	}
}

func TestOpenPagesUnsupported(t *testing.T) {
	if _, err := OpenPages("table.docx"); err == nil {
		t.Error("OpenPages() should reject unknown extensions")
	}
}
