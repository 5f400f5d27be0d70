package normalize

import (
	"math"
	"testing"
)

func TestCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		latitude bool
		want     float64
		wantOK   bool
	}{
		{name: "missing decimal latitude", raw: "10277349", latitude: true, want: 10.277349, wantOK: true},
		{name: "missing decimal longitude", raw: "-75305583", latitude: false, want: -75.305583, wantOK: true},
		{name: "comma decimal separator", raw: "6,2442", latitude: true, want: 6.2442, wantOK: true},
		{name: "embedded spaces", raw: "-74, 0721", latitude: false, want: -74.0721, wantOK: true},
		{name: "already valid", raw: "4.60971", latitude: true, want: 4.60971, wantOK: true},
		{name: "negative latitude", raw: "-4215", latitude: true, want: -4.215, wantOK: true},
		{name: "empty", raw: "", latitude: true, wantOK: false},
		{name: "garbage", raw: "N/A", latitude: false, wantOK: false},
		{name: "two separators", raw: "6.24.42", latitude: true, wantOK: false},
		{name: "infinity", raw: "Inf", latitude: true, wantOK: false},
		{name: "nan", raw: "NaN", latitude: false, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coordinate(tt.raw, tt.latitude)
			if ok != tt.wantOK {
				t.Fatalf("Coordinate(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Coordinate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// Colombian polling places lie within lat [-5, 13] and lon [-85, -65]. Inputs
// below are coordinates whose correction is unambiguous (two integer digits
// for values above ten, or already well formed).
func TestCoordinateColombianRange(t *testing.T) {
	latitudes := []string{"10277349", "12585", "11004", "4.6097", "-4,215", "1"}
	for _, raw := range latitudes {
		v, ok := Coordinate(raw, true)
		if !ok {
			t.Fatalf("Coordinate(%q) unexpectedly failed", raw)
		}
		if v < -5 || v > 13 {
			t.Errorf("latitude %q normalized to %v, outside [-5, 13]", raw, v)
		}
	}

	longitudes := []string{"-75305583", "-7408175", "-66870", "-8139"}
	for _, raw := range longitudes {
		v, ok := Coordinate(raw, false)
		if !ok {
			t.Fatalf("Coordinate(%q) unexpectedly failed", raw)
		}
		if v < -85 || v > -65 {
			t.Errorf("longitude %q normalized to %v, outside [-85, -65]", raw, v)
		}
	}
}
