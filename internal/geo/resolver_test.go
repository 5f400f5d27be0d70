package geo

import "testing"

func testIndex() *MunicipalityIndex {
	return BuildIndex([]Municipality{
		{DeptCode: "05", MuniCode: "001", Name: "MEDELLIN"},
		{DeptCode: "54", MuniCode: "001", Name: "CÚCUTA"},
		{DeptCode: "11", MuniCode: "001", Name: "BOGOTA. D.C."},
		{DeptCode: "05", MuniCode: "001", Name: "Medellín"},
		{DeptCode: "05", MuniCode: "440", Name: "MARINILLA"},
		{DeptCode: "52", MuniCode: "001", Name: "PASTO"},
		{DeptCode: "15", MuniCode: "001", Name: "Pasto"},
	})
}

func TestResolve(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name   string
		input  string
		want   MunicipalityCode
		wantOK bool
	}{
		{name: "exact", input: "MEDELLIN", want: MunicipalityCode{"05", "001"}, wantOK: true},
		{name: "accent and case insensitive", input: "medellín", want: MunicipalityCode{"05", "001"}, wantOK: true},
		{name: "accent in index", input: "Cucuta", want: MunicipalityCode{"54", "001"}, wantOK: true},
		{name: "punctuation", input: "Bogotá, D.C.", want: MunicipalityCode{"11", "001"}, wantOK: true},
		{name: "first seen wins", input: "pasto", want: MunicipalityCode{"52", "001"}, wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "null token", input: "nan", wantOK: false},
		{name: "normalizes to nothing", input: "*", wantOK: false},
		{name: "absent", input: "Springfield", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ix.Resolve(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBuildIndexCollisions(t *testing.T) {
	ix := testIndex()

	if ix.Len() != 5 {
		t.Errorf("Len() = %d, want 5", ix.Len())
	}
	c := ix.Collisions()
	if len(c) != 1 {
		t.Fatalf("Collisions() = %v, want one entry for PASTO", c)
	}
	if c[0].Key != "PASTO" || c[0].Kept.DeptCode != "52" || c[0].Ignored.DeptCode != "15" {
		t.Errorf("unexpected collision %+v", c[0])
	}
}

func TestNilIndexIsUnresolved(t *testing.T) {
	var ix *MunicipalityIndex
	if _, ok := ix.Resolve("MEDELLIN"); ok {
		t.Error("nil index resolved a name")
	}
}

func TestTally(t *testing.T) {
	ix := testIndex()
	var tally Tally
	for _, name := range []string{"Medellin", "Gotham", "", "gotham ", "Marinilla", "Metropolis", "Gotham"} {
		tally.Record(ix, name)
	}
	if tally.Resolved != 2 || tally.Unresolved != 5 {
		t.Errorf("Tally = %d resolved / %d unresolved, want 2 / 5", tally.Resolved, tally.Unresolved)
	}

	top := tally.TopMissing(1)
	if len(top) != 1 || top[0].Name != "Gotham" || top[0].Count != 2 {
		t.Errorf("TopMissing(1) = %v", top)
	}
}
