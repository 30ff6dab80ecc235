package locations

import (
	"testing"
	_ "time/tzdata"

	"github.com/codeGROOVE-dev/worldclock/pkg/zone"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		input string
		zone  string
		found bool
	}{
		{"Tokyo", "Asia/Tokyo", true},
		{"  mumbai ", "Asia/Kolkata", true},
		{"NYC", "America/New_York", true},
		{"Sao Paulo", "America/Sao_Paulo", true},
		{"São Paulo", "America/Sao_Paulo", true},
		{"Springfield", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			city, ok := Lookup(tt.input)
			if ok != tt.found || city.Zone != tt.zone {
				t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.input, city.Zone, ok, tt.zone, tt.found)
			}
		})
	}
}

func TestCatalogZonesResolve(t *testing.T) {
	resolver := zone.NewResolver(nil)
	cities := Catalog()
	if len(cities) != 20 {
		t.Errorf("len(Catalog()) = %d, want 20", len(cities))
	}
	for i, c := range cities {
		if err := resolver.Validate(c.Zone); err != nil {
			t.Errorf("catalog city %s: %v", c.Name, err)
		}
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			t.Errorf("catalog city %s has coordinates %f,%f", c.Name, c.Latitude, c.Longitude)
		}
		if i > 0 && cities[i-1].Name >= c.Name {
			t.Errorf("Catalog() not sorted at %s", c.Name)
		}
	}
}

func TestDefaultsComeFromCatalog(t *testing.T) {
	for _, l := range Defaults() {
		city, ok := Lookup(l.Name)
		if !ok || city.Zone != l.Zone {
			t.Errorf("default %s (%s) not matched in catalog", l.Name, l.Zone)
		}
	}
}
