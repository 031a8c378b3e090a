package usecases

import (
	"fmt"
	"strconv"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
)

const notComputable = "--"

// Legs builds the waypoint list rows: each element with its distance from
// the previous element. The first row and any row next to a polygon have
// no computable distance.
func Legs(route *domain.Route, distance geospatial.Calculator) []domain.Leg {
	legs := make([]domain.Leg, 0, route.Len())
	for i, e := range route.All() {
		leg := domain.Leg{
			Index:   i,
			Label:   waypointLabel(i),
			Polygon: e.IsPolygon(),
			Display: notComputable,
		}
		if e.IsPolygon() {
			leg.Text = polygonMarker
		} else {
			leg.Point = e.Point
			leg.Text = e.Point.String()
			leg.Actions = []string{domain.ActionInsertPolygonBefore, domain.ActionInsertPolygonAfter}
		}
		if i > 0 && !e.IsPolygon() {
			if prev := route.At(i - 1); !prev.IsPolygon() {
				leg.Distance = distance(prev.Point, e.Point)
				leg.Computable = true
				leg.Display = strconv.FormatFloat(leg.Distance, 'f', 2, 64)
			}
		}
		legs = append(legs, leg)
	}
	return legs
}

func waypointLabel(i int) string {
	return fmt.Sprintf("%02d", i)
}
