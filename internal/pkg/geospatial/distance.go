package geospatial

import (
	"fmt"
	"strings"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// Formula names a distance formula.
type Formula string

const (
	FormulaPlanar    Formula = "planar"
	FormulaHaversine Formula = "haversine"
)

// Calculator computes the distance between two route coordinates.
// One calculator is shared by the leg table and every exporter so
// both always produce the same number for the same pair.
type Calculator func(a, b domain.Coordinate) float64

// PlanarDistance treats coordinates as directly subtractable components.
func PlanarDistance(a, b domain.Coordinate) float64 {
	return Planar(a.X, a.Y, b.X, b.Y)
}

// HaversineDistance treats X as latitude and Y as longitude, in degrees.
func HaversineDistance(a, b domain.Coordinate) float64 {
	return Haversine(a.X, a.Y, b.X, b.Y)
}

// NewCalculator returns the calculator for the named formula.
func NewCalculator(name string) (Calculator, error) {
	switch Formula(strings.ToLower(name)) {
	case FormulaPlanar, "":
		return PlanarDistance, nil
	case FormulaHaversine:
		return HaversineDistance, nil
	}
	return nil, fmt.Errorf("unknown distance formula %q", name)
}
