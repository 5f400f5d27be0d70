package groups

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	import_pkg "github.com/hjs-etl/internal/import"
	"github.com/hjs-etl/internal/normalize"
)

// Column names of the relations file.
const (
	DocumentColumn = "documento"
	GroupColumn    = "nombre_grupo"
)

// WriteCSV writes relations with a header line.
func WriteCSV(w io.Writer, relations []Relation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{DocumentColumn, GroupColumn}); err != nil {
		return err
	}
	for _, r := range relations {
		if err := cw.Write([]string{r.Document, r.Group}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes relations to path, replacing any previous file.
func WriteFile(path string, relations []Relation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, relations); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// RelationReader streams a relations file written by WriteFile.
type RelationReader struct {
	csv *import_pkg.CSVReader
}

// OpenRelations opens a relations file and checks its header.
func OpenRelations(path string) (*RelationReader, error) {
	r, err := import_pkg.OpenCSV(path, ',')
	if err != nil {
		return nil, err
	}
	if err := r.Require(DocumentColumn, GroupColumn); err != nil {
		r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &RelationReader{csv: r}, nil
}

// Next returns the next relation. Blank rows are import_pkg.ErrSkipRow; names
// are re-canonicalized so hand-edited files still match the vocabulary.
func (r *RelationReader) Next() (Relation, error) {
	rec, err := r.csv.Next()
	if err != nil {
		return Relation{}, err
	}
	doc := rec.Get(DocumentColumn)
	name, ok := normalize.Key(rec.Get(GroupColumn))
	if doc == "" || !ok {
		return Relation{}, import_pkg.ErrSkipRow
	}
	return Relation{Document: doc, Group: name}, nil
}

// Close releases the file.
func (r *RelationReader) Close() error {
	return r.csv.Close()
}

// ReadAll reads every relation of path, skipping blank rows.
func ReadAll(path string) ([]Relation, error) {
	r, err := OpenRelations(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []Relation
	for {
		rel, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if errors.Is(err, import_pkg.ErrSkipRow) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
}
