package normalize

import (
	"math"
	"strconv"
	"strings"
)

const (
	maxLatitude  = 90.0
	maxLongitude = 180.0
)

// Coordinate parses a latitude or longitude extracted from a PDF table.
//
// The extraction frequently drops the decimal point ("10277349" for
// 10.277349), so while the value lies outside the valid range it is divided
// by ten. This is an approximation: it recovers the usual failure mode but
// cannot tell how many integer digits the original had beyond range limits.
func Coordinate(raw string, isLatitude bool) (float64, bool) {
	s := strings.ReplaceAll(raw, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	limit := maxLongitude
	if isLatitude {
		limit = maxLatitude
	}
	for math.Abs(v) > limit {
		v /= 10
	}
	return v, true
}
