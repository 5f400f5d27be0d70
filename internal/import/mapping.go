package import_pkg

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hjs-etl/internal/normalize"
)

//go:embed mappings.yaml
var defaultMappings []byte

// SheetMapping describes how to find the header row of a sheet kind and which
// header spellings feed each canonical field.
type SheetMapping struct {
	HeaderKeywords [][]string          `yaml:"header_keywords"`
	NameField      string              `yaml:"name_field"`
	NameRejects    []string            `yaml:"name_rejects"`
	Fields         map[string][]string `yaml:"fields"`
}

// GroupSource is a workbook with a document column and a group column.
type GroupSource struct {
	File     string   `yaml:"file"`
	Document []string `yaml:"document"`
	Group    []string `yaml:"group"`
}

// Mappings is the whole alias table.
type Mappings struct {
	Sheets       map[string]SheetMapping `yaml:"sheets"`
	GroupSources []GroupSource           `yaml:"group_sources"`
}

// LoadMappings parses the embedded alias table.
func LoadMappings() (*Mappings, error) {
	return ParseMappings(defaultMappings)
}

// ParseMappings parses an alias table from YAML.
func ParseMappings(data []byte) (*Mappings, error) {
	var m Mappings
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse header mappings: %w", err)
	}
	return &m, nil
}

// Sheet returns the mapping of a sheet kind.
func (m *Mappings) Sheet(kind string) (SheetMapping, error) {
	s, ok := m.Sheets[kind]
	if !ok {
		return SheetMapping{}, fmt.Errorf("no header mapping for %q", kind)
	}
	return s, nil
}

// Columns maps canonical field names to column positions of one sheet.
type Columns map[string]int

// ResolveColumns resolves every field against header once. For each field the
// aliases are tried in order and the first one present in the header wins.
// Fields without a matching column are absent from the result.
func ResolveColumns(header []string, fields map[string][]string) Columns {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalize.Fold(h)
		if _, dup := positions[key]; !dup && key != "" {
			positions[key] = i
		}
	}

	cols := make(Columns, len(fields))
	for field, aliases := range fields {
		for _, alias := range aliases {
			if i, ok := positions[normalize.Fold(alias)]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}

// Get returns the trimmed cell of field in row, or "" when the field has no
// column or the row is short.
func (c Columns) Get(row []string, field string) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return normalize.Cell(row[i])
}

// Has reports whether field resolved to a column.
func (c Columns) Has(field string) bool {
	_, ok := c[field]
	return ok
}
