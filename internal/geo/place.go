// Package geo builds the geographic dimension from DIVIPOLE polling-place
// tables and resolves free-text municipality names to their codes.
package geo

import (
	"strconv"

	"github.com/hjs-etl/internal/normalize"
)

// Place is one polling place of the geographic dimension.
// The natural key is (DeptCode, MuniCode, ZoneCode, PlaceCode).
type Place struct {
	DeptCode   string
	MuniCode   string
	ZoneCode   string
	PlaceCode  string
	DeptName   string
	MuniName   string
	PlaceName  string
	Address    string
	ZoneType   string
	TableCount *int
	Latitude   *float64
	Longitude  *float64
}

// Key returns the natural key joined with '|'.
func (p Place) Key() string {
	return p.DeptCode + "|" + p.MuniCode + "|" + p.ZoneCode + "|" + p.PlaceCode
}

// column positions of the trailing numeric fields
type layout struct {
	tables, lat, lon int
}

var (
	// DIVIPOLE export: columns 9-11 carry census counts that are not stored.
	fullLayout = layout{tables: 12, lat: 13, lon: 14}
	// Compact export in Place field order.
	compactLayout = layout{tables: 9, lat: 10, lon: 11}
)

const (
	minFullCells    = 15
	minCompactCells = 12
)

// ParsePlaceRow maps a table row to a Place. Rows whose first cell is not a
// numeric department code, or that are too short for either layout, are
// headers or noise and yield false.
func ParsePlaceRow(cells []string) (Place, bool) {
	if len(cells) < minCompactCells {
		return Place{}, false
	}
	clean := make([]string, len(cells))
	for i, c := range cells {
		clean[i] = normalize.Cell(c)
	}
	if !normalize.IsDigits(clean[0]) {
		return Place{}, false
	}

	l := compactLayout
	if len(clean) >= minFullCells {
		l = fullLayout
	}

	p := Place{
		DeptCode:  clean[0],
		MuniCode:  clean[1],
		ZoneCode:  clean[2],
		PlaceCode: clean[3],
		DeptName:  clean[4],
		MuniName:  clean[5],
		PlaceName: clean[6],
		Address:   clean[7],
		ZoneType:  clean[8],
	}
	if n, err := strconv.Atoi(clean[l.tables]); err == nil {
		p.TableCount = &n
	}
	if v, ok := normalize.Coordinate(clean[l.lat], true); ok {
		p.Latitude = &v
	}
	if v, ok := normalize.Coordinate(clean[l.lon], false); ok {
		p.Longitude = &v
	}
	return p, true
}
