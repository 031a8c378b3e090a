package usecases_test

import (
	"testing"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/usecases"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
)

func TestLegs_DistanceFromPrevious(t *testing.T) {
	r := domain.NewRoute()
	for _, c := range pts(0, 0, 3, 4, 3, 4.5) {
		r.Append(c)
	}

	legs := usecases.Legs(r, geospatial.PlanarDistance)
	if len(legs) != 3 {
		t.Fatalf("expected 3 legs, got %d", len(legs))
	}

	first := legs[0]
	if first.Label != "00" || first.Computable || first.Display != "--" {
		t.Errorf("first row should have no distance, got %+v", first)
	}
	if legs[1].Label != "01" || !legs[1].Computable || legs[1].Distance != 5 || legs[1].Display != "5.00" {
		t.Errorf("unexpected second row %+v", legs[1])
	}
	if legs[1].Text != "3.00, 4.00" {
		t.Errorf("unexpected coordinate text %q", legs[1].Text)
	}
	if legs[2].Display != "0.50" {
		t.Errorf("unexpected third row %+v", legs[2])
	}
	if len(legs[0].Actions) != 2 {
		t.Errorf("waypoint rows should offer polygon insertion, got %v", legs[0].Actions)
	}
}

func TestLegs_PolygonRowsAreNotComputable(t *testing.T) {
	ring := domain.PolygonEntry(pts(1, 1, 2, 1, 2, 2)).Close()
	r := domain.NewRoute(
		domain.Waypoint(domain.Coordinate{X: 0, Y: 0}),
		domain.Polygon(ring),
		domain.Waypoint(domain.Coordinate{X: 3, Y: 4}),
		domain.Waypoint(domain.Coordinate{X: 6, Y: 8}),
	)

	legs := usecases.Legs(r, geospatial.PlanarDistance)

	if !legs[1].Polygon || legs[1].Text != "Polygon" || legs[1].Computable || legs[1].Actions != nil {
		t.Errorf("unexpected polygon row %+v", legs[1])
	}
	if legs[2].Computable || legs[2].Display != "--" {
		t.Errorf("row after a polygon has no distance, got %+v", legs[2])
	}
	if !legs[3].Computable || legs[3].Distance != 5 {
		t.Errorf("unexpected last row %+v", legs[3])
	}
}

func TestLegs_MatchExportDistances(t *testing.T) {
	r := domain.NewRoute()
	for _, c := range pts(43.2630, -2.9350, 43.2640, -2.9340, 43.2700, -2.9200) {
		r.Append(c)
	}
	calc := geospatial.HaversineDistance

	legs := usecases.Legs(r, calc)
	for i := 1; i < r.Len(); i++ {
		if want := calc(r.At(i-1).Point, r.At(i).Point); legs[i].Distance != want {
			t.Errorf("leg %d = %v, want %v", i, legs[i].Distance, want)
		}
	}
}
