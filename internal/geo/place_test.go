package geo

import (
	"math"
	"testing"
)

func TestParsePlaceRowCompact(t *testing.T) {
	row := []string{"05", "001", "01", "001", "ANTIOQUIA", "MEDELLIN", "PUESTO 1", "CALLE 1", "URBANA", "3", "10277349", "-75305583"}

	p, ok := ParsePlaceRow(row)
	if !ok {
		t.Fatal("ParsePlaceRow() rejected a well-formed row")
	}
	if p.Key() != "05|001|01|001" {
		t.Errorf("Key() = %q", p.Key())
	}
	if p.MuniName != "MEDELLIN" || p.ZoneType != "URBANA" {
		t.Errorf("names not mapped: %+v", p)
	}
	if p.TableCount == nil || *p.TableCount != 3 {
		t.Errorf("TableCount = %v, want 3", p.TableCount)
	}
	if p.Latitude == nil || math.Abs(*p.Latitude-10.277349) > 1e-9 {
		t.Errorf("Latitude = %v, want 10.277349", p.Latitude)
	}
	if p.Longitude == nil || math.Abs(*p.Longitude+75.305583) > 1e-9 {
		t.Errorf("Longitude = %v, want -75.305583", p.Longitude)
	}
}

func TestParsePlaceRowFull(t *testing.T) {
	row := []string{
		"11", "001", "90", "01", "BOGOTA D.C.", "BOGOTA. D.C.", "COLEGIO\nDISTRITAL", "KR 7 # 1-10", "URBANA",
		"1200", "1100", "2300", "7", "4,60971", "-74, 08175",
	}

	p, ok := ParsePlaceRow(row)
	if !ok {
		t.Fatal("ParsePlaceRow() rejected a DIVIPOLE row")
	}
	if p.PlaceName != "COLEGIO DISTRITAL" {
		t.Errorf("PlaceName = %q, newlines should be flattened", p.PlaceName)
	}
	if p.TableCount == nil || *p.TableCount != 7 {
		t.Errorf("TableCount = %v, want 7 from column 12", p.TableCount)
	}
	if p.Latitude == nil || math.Abs(*p.Latitude-4.60971) > 1e-9 {
		t.Errorf("Latitude = %v", p.Latitude)
	}
	if p.Longitude == nil || math.Abs(*p.Longitude+74.08175) > 1e-9 {
		t.Errorf("Longitude = %v", p.Longitude)
	}
}

func TestParsePlaceRowSkips(t *testing.T) {
	tests := []struct {
		name string
		row  []string
	}{
		{"header", []string{"DD", "MM", "ZZ", "PP", "DEPARTAMENTO", "MUNICIPIO", "PUESTO", "DIRECCION", "ZONA", "MESAS", "LAT", "LON"}},
		{"too short", []string{"05", "001", "01"}},
		{"empty", nil},
		{"non numeric code", []string{"5A", "001", "01", "001", "A", "B", "C", "D", "E", "1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ParsePlaceRow(tt.row); ok {
				t.Errorf("ParsePlaceRow(%v) accepted a noise row", tt.row)
			}
		})
	}
}

func TestParsePlaceRowBadNumbers(t *testing.T) {
	row := []string{"05", "001", "01", "001", "ANTIOQUIA", "MEDELLIN", "PUESTO 1", "CALLE 1", "URBANA", "", "N/A", "nan"}
	p, ok := ParsePlaceRow(row)
	if !ok {
		t.Fatal("row with bad numbers should still be accepted")
	}
	if p.TableCount != nil || p.Latitude != nil || p.Longitude != nil {
		t.Errorf("unparseable numeric cells should be nil, got %+v", p)
	}
}
