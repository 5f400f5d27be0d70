package normalize

import (
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025-08-05", "2025-08-05"},
		{"2025-08-05 17:33:52.492", "2025-08-05"},
		{"05/08/2025", "2025-08-05"},
		{"5/8/2025", "2025-08-05"},
		{"2025-08-05T17:33:52Z", "2025-08-05"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Date(tt.input)
			if got == nil {
				t.Fatalf("Date(%q) = nil", tt.input)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("Date(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
			if got.Location() != time.UTC || got.Hour() != 0 {
				t.Errorf("Date(%q) should be a UTC midnight, got %v", tt.input, got)
			}
		})
	}

	for _, bad := range []string{"", "nan", "NaT", "not a date", "31/31/2020"} {
		if got := Date(bad); got != nil {
			t.Errorf("Date(%q) = %v, want nil", bad, got)
		}
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"12", 12},
		{"12.0", 12},
		{"1,200", 1200},
		{"NO", 0},
		{"no", 0},
		{"-", 0},
		{"nan", 0},
		{"", 0},
		{"muchos", 0},
	}
	for _, tt := range tests {
		if got := Count(tt.input); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestOptionalAndTruncate(t *testing.T) {
	if Optional("  ") != nil || Optional("NaN") != nil {
		t.Error("blank and NaN cells must be nil")
	}
	if v := Optional(" x "); v == nil || *v != "x" {
		t.Errorf("Optional(\" x \") = %v", v)
	}
	if got := Truncate("ñandú", 3); got != "ñan" {
		t.Errorf("Truncate() = %q, want rune-safe cut", got)
	}
	if v := OptionalMax("3001234567890123", 10); v == nil || *v != "3001234567" {
		t.Errorf("OptionalMax() = %v", v)
	}
}

func TestPhone(t *testing.T) {
	if v := Phone("6076543210.0", 20); v == nil || *v != "6076543210" {
		t.Errorf("Phone() = %v", v)
	}
	if v := Phone("nan", 20); v != nil {
		t.Errorf("Phone(nan) = %v, want nil", *v)
	}
}
