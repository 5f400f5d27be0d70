package import_pkg

import "testing"

func TestLoadMappings(t *testing.T) {
	m, err := LoadMappings()
	if err != nil {
		t.Fatalf("LoadMappings() error = %v", err)
	}
	for _, kind := range []string{"candidates", "leaders", "contacts"} {
		if _, err := m.Sheet(kind); err != nil {
			t.Errorf("Sheet(%q) error = %v", kind, err)
		}
	}
	if _, err := m.Sheet("payroll"); err == nil {
		t.Error("Sheet(payroll) should fail")
	}
	if len(m.GroupSources) != 2 {
		t.Errorf("GroupSources = %d, want 2", len(m.GroupSources))
	}
}

func TestResolveColumnsFirstMatch(t *testing.T) {
	fields := map[string][]string{
		"votes":   {"VOTOS OBTENIDOS", "VOTOS"},
		"bingo":   {"NUMERO DE BOLETAS BINGO", "BINGO"},
		"meeting": {"REUNION"},
		"missing": {"NO EXISTE"},
	}
	header := []string{"Nombre", "VOTOS", " Votos  Obtenidos ", "BINGO", "Reunión"}

	cols := ResolveColumns(header, fields)

	tests := []struct {
		field string
		want  int
		ok    bool
	}{
		{"votes", 2, true},
		{"bingo", 3, true},
		{"meeting", 4, true},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := cols[tt.field]
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("column of %q = (%d, %v), want (%d, %v)", tt.field, got, ok, tt.want, tt.ok)
		}
	}

	row := []string{"Ana", "10", "12", "3"}
	if cols.Get(row, "votes") != "12" {
		t.Errorf("Get(votes) = %q", cols.Get(row, "votes"))
	}
	if cols.Get(row, "meeting") != "" {
		t.Error("short row should yield empty cell")
	}
	if cols.Has("missing") {
		t.Error("unresolved field reported as present")
	}
}

func TestParseMappingsInvalid(t *testing.T) {
	if _, err := ParseMappings([]byte("sheets: [unclosed")); err == nil {
		t.Error("ParseMappings() should reject invalid YAML")
	}
}
