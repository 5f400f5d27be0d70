// Package normalize turns the free text found in census, company and campaign
// sources into stable comparison keys and repairs malformed numeric fields.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold uppercases s, strips combining marks and collapses whitespace.
// Punctuation is kept, so it is suitable for header and sheet-name comparison.
func Fold(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	// transformers carry state, so the chain is built per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

// Key returns the canonical comparison key for a geographic or group name:
// uppercase, accent-free, only [A-Z0-9 -], single spaces. Results of length
// one or less are rejected.
func Key(text string) (string, bool) {
	folded := Fold(text)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	key := strings.Join(strings.Fields(b.String()), " ")
	if len(key) <= 1 {
		return "", false
	}
	return key, true
}

var reFloatID = regexp.MustCompile(`^(\d+)\.0+$`)

// Document cleans a national ID as exported by spreadsheets: "1098.0" becomes
// "1098", and every non-digit is removed.
func Document(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := reFloatID.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// PadCode left-pads a numeric code with zeros to width ("1" -> "01").
// Non-numeric or already wide codes are returned trimmed.
func PadCode(code string, width int) string {
	code = strings.TrimSpace(code)
	if m := reFloatID.FindStringSubmatch(code); m != nil {
		code = m[1]
	}
	if !IsDigits(code) || len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}

// Cell flattens a table cell: newlines become spaces and the result is trimmed.
func Cell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.TrimSpace(s)
}
