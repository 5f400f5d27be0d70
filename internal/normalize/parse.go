package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// nullTokens are spellings of "no value" left behind by spreadsheet exports.
var nullTokens = map[string]bool{
	"":     true,
	"NAN":  true,
	"NONE": true,
	"NULL": true,
	"NAT":  true,
}

// IsNull reports whether a raw cell should be treated as missing.
func IsNull(s string) bool {
	return nullTokens[strings.ToUpper(strings.TrimSpace(s))]
}

// Optional returns nil for missing cells and a pointer to the trimmed value otherwise.
func Optional(s string) *string {
	if IsNull(s) {
		return nil
	}
	v := strings.TrimSpace(s)
	return &v
}

// OptionalMax is Optional with the value truncated to max runes.
func OptionalMax(s string, max int) *string {
	v := Optional(s)
	if v == nil {
		return nil
	}
	t := Truncate(*v, max)
	return &t
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Phone removes the ".0" suffix left by float-typed spreadsheet columns.
func Phone(s string, max int) *string {
	if IsNull(s) {
		return nil
	}
	v := strings.TrimSpace(s)
	if m := reFloatID.FindStringSubmatch(v); m != nil {
		v = m[1]
	}
	v = Truncate(v, max)
	return &v
}

// dateLayouts are tried in order. Day-first wins for ambiguous slashed dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"2006/01/02",
}

// Date parses the date part of raw. Unparseable input yields nil.
func Date(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if IsNull(s) {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// Count parses tally columns of the tracking workbook. Placeholders such as
// "NO", "-" or "nan" and anything unparseable count as zero.
func Count(raw string) int {
	s := strings.TrimSpace(raw)
	if IsNull(s) || s == "-" || strings.EqualFold(s, "NO") {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
