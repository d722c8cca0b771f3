package model

import (
	"math"
	"testing"
)

func TestPoint_HasValidPosition(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"Tokyo", 35.68, 139.76, true},
		{"Origin", 0, 0, true},
		{"NaN Lat", math.NaN(), 10, false},
		{"NaN Lon", 10, math.NaN(), false},
		{"Inf", math.Inf(1), 10, false},
		{"Lat Out Of Range", 91, 0, false},
		{"Lon Out Of Range", 0, 181, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Point{Name: "x", Lat: tt.lat, Lon: tt.lon}
			if got := p.HasValidPosition(); got != tt.want {
				t.Errorf("HasValidPosition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPoint_Position(t *testing.T) {
	p := Point{Lat: 35.36, Lon: 138.72}
	pos := p.Position()
	if pos.Lon() != 138.72 || pos.Lat() != 35.36 {
		t.Errorf("Position() = %v, want [138.72 35.36]", pos)
	}
}

func TestFeaturedSet(t *testing.T) {
	fs := NewFeaturedSet([]string{"Fuji", "Inari", "", "Fuji", "Himeji"})

	if fs.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", fs.Len())
	}
	if r, ok := fs.Rank("Fuji"); !ok || r != 0 {
		t.Errorf("Rank(Fuji) = %d,%v; want 0,true", r, ok)
	}
	if r, ok := fs.Rank("Himeji"); !ok || r != 2 {
		t.Errorf("Rank(Himeji) = %d,%v; want 2,true", r, ok)
	}
	if fs.Contains("Nara") {
		t.Error("Contains(Nara) should be false")
	}

	names := fs.Names()
	names[0] = "mutated"
	if fs.Names()[0] != "Fuji" {
		t.Error("Names() must return a copy")
	}
}

func TestFeaturedSet_Nil(t *testing.T) {
	var fs *FeaturedSet
	if fs.Contains("A") || fs.Len() != 0 || fs.Names() != nil {
		t.Error("nil FeaturedSet should behave as empty")
	}
}
