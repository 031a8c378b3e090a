package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
)

func TestPlanarDistance_345(t *testing.T) {
	got := geospatial.PlanarDistance(domain.Coordinate{X: 0, Y: 0}, domain.Coordinate{X: 3, Y: 4})
	if got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestCalculators_SymmetricAndZero(t *testing.T) {
	points := []domain.Coordinate{
		{X: 0, Y: 0},
		{X: 3, Y: 4},
		{X: -12.5, Y: 7.25},
		{X: 43.263, Y: -2.935},
		{X: 43.264, Y: -2.934},
		{X: 1e6, Y: -1e6},
	}

	for _, name := range []string{"planar", "haversine"} {
		calc, err := geospatial.NewCalculator(name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		for _, a := range points {
			if d := calc(a, a); d != 0 {
				t.Errorf("%s: distance(%v,%v) = %v, want 0", name, a, a, d)
			}
			for _, b := range points {
				ab, ba := calc(a, b), calc(b, a)
				if ab != ba {
					t.Errorf("%s: asymmetric distance %v vs %v", name, ab, ba)
				}
				if ab < 0 {
					t.Errorf("%s: negative distance %v", name, ab)
				}
				if a != b && ab == 0 {
					t.Errorf("%s: zero distance for distinct points %v %v", name, a, b)
				}
			}
		}
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Abando to Moyua, Bilbao: roughly 138 m apart.
	d := geospatial.Haversine(43.263, -2.935, 43.264, -2.934)
	if math.Abs(d-137) > 5 {
		t.Errorf("expected ~137m, got %.1f", d)
	}
}

func TestNewCalculator_Unknown(t *testing.T) {
	if _, err := geospatial.NewCalculator("vincenty"); err == nil {
		t.Error("expected error for unknown formula")
	}
}
