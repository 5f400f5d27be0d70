package normalize

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "accents fold to ascii", input: "Café", want: "CAFE", wantOK: true},
		{name: "already canonical", input: "CAFE", want: "CAFE", wantOK: true},
		{name: "municipality with tilde", input: "  Cúcuta ", want: "CUCUTA", wantOK: true},
		{name: "enye", input: "Nariño", want: "NARINO", wantOK: true},
		{name: "punctuation becomes space", input: "Bogotá, D.C.", want: "BOGOTA D C", wantOK: true},
		{name: "hyphen is kept", input: "Santa Rosa-Norte", want: "SANTA ROSA-NORTE", wantOK: true},
		{name: "whitespace collapsed", input: "San   José\tdel  Guaviare", want: "SAN JOSE DEL GUAVIARE", wantOK: true},
		{name: "empty", input: "", want: "", wantOK: false},
		{name: "single char rejected", input: "-", want: "", wantOK: false},
		{name: "single letter after cleaning", input: " a. ", want: "", wantOK: false},
		{name: "only punctuation", input: "...;", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Key(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Key(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"Café", "Bogotá, D.C.", "EL CARMEN DE VIBORAL", "Pendones / Bingo",
		"  mixed\nLines  ", "San Andrés y Providencia", "ÁÉÍÓÚ-ñ", "12 de Octubre",
	}
	for _, in := range inputs {
		once, ok := Key(in)
		if !ok {
			continue
		}
		twice, ok2 := Key(once)
		if !ok2 || twice != once {
			t.Errorf("Key not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold(" Reunión  de líderes "); got != "REUNION DE LIDERES" {
		t.Errorf("Fold() = %q", got)
	}
	if got := Fold("NOMBRE CANDIDATO."); got != "NOMBRE CANDIDATO." {
		t.Errorf("Fold() should keep punctuation, got %q", got)
	}
}

func TestDocument(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1098765432", "1098765432"},
		{"1098765432.0", "1098765432"},
		{" 1.098.765.432 ", "1098765432"},
		{"CC 123-45", "12345"},
		{"", ""},
		{"nan", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Document(tt.input); got != tt.want {
				t.Errorf("Document(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPadCode(t *testing.T) {
	tests := []struct {
		code  string
		width int
		want  string
	}{
		{"1", 2, "01"},
		{"43", 3, "043"},
		{"700", 3, "700"},
		{"12.0", 2, "12"},
		{"", 2, ""},
		{"AB", 3, "AB"},
	}
	for _, tt := range tests {
		if got := PadCode(tt.code, tt.width); got != tt.want {
			t.Errorf("PadCode(%q, %d) = %q, want %q", tt.code, tt.width, got, tt.want)
		}
	}
}

func TestCell(t *testing.T) {
	if got := Cell("  CALLE 1\nNo. 2 "); got != "CALLE 1 No. 2" {
		t.Errorf("Cell() = %q", got)
	}
}
