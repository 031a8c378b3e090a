package domain

import (
	"slices"
	"strconv"
)

// Coordinate is a map position in the map's single projection.
// X is exported as "Latitude" and Y as "Longitude".
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String renders the coordinate the way the waypoint list shows it.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.X, 'f', 2, 64) + ", " + strconv.FormatFloat(c.Y, 'f', 2, 64)
}

// PolygonEntry is a closed ring of coordinates.
type PolygonEntry []Coordinate

// Close returns the ring with its first vertex repeated at the end.
// Rings with fewer than three vertices are returned unchanged.
func (p PolygonEntry) Close() PolygonEntry {
	if len(p) < 3 || p[0] == p[len(p)-1] {
		return slices.Clone(p)
	}
	out := make(PolygonEntry, 0, len(p)+1)
	out = append(out, p...)
	return append(out, p[0])
}

// Bounds represents a bounding box over map coordinates.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

