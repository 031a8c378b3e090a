package domain

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Element is one entry of a route: a single waypoint or an inline polygon.
type Element struct {
	Point Coordinate
	Ring  PolygonEntry
}

// Waypoint wraps a coordinate as a route element.
func Waypoint(c Coordinate) Element { return Element{Point: c} }

// Polygon wraps a ring as a single route element.
func Polygon(ring PolygonEntry) Element { return Element{Ring: slices.Clone(ring)} }

// IsPolygon reports whether the element is a polygon rather than a waypoint.
func (e Element) IsPolygon() bool { return e.Ring != nil }

type elementJSON struct {
	Kind    string       `json:"kind"`
	Point   *Coordinate  `json:"point,omitempty"`
	Polygon PolygonEntry `json:"polygon,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	if e.IsPolygon() {
		return json.Marshal(elementJSON{Kind: "polygon", Polygon: e.Ring})
	}
	p := e.Point
	return json.Marshal(elementJSON{Kind: "waypoint", Point: &p})
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "polygon":
		if raw.Polygon == nil {
			raw.Polygon = PolygonEntry{}
		}
		*e = Element{Ring: raw.Polygon}
	case "waypoint", "":
		if raw.Point == nil {
			return fmt.Errorf("waypoint element without point")
		}
		*e = Element{Point: *raw.Point}
	default:
		return fmt.Errorf("unknown element kind %q", raw.Kind)
	}
	return nil
}

// Route is the ordered sequence of waypoints and polygons of a mission.
// Elements are only ever inserted or appended, never reordered.
type Route struct {
	elements []Element
	revision uint64
}

// NewRoute returns a route holding the given elements in order.
func NewRoute(elements ...Element) *Route {
	return &Route{elements: slices.Clone(elements)}
}

// Append adds a waypoint at the end of the route.
func (r *Route) Append(c Coordinate) {
	r.elements = append(r.elements, Waypoint(c))
	r.revision++
}

// SpliceAt inserts entries starting at index, shifting later elements right.
func (r *Route) SpliceAt(index int, entries ...Element) error {
	if index < 0 || index > len(r.elements) {
		return fmt.Errorf("splice at %d of %d: %w", index, len(r.elements), ErrInvalidIndex)
	}
	if len(entries) == 0 {
		return nil
	}
	r.elements = slices.Insert(r.elements, index, entries...)
	r.revision++
	return nil
}

// Len returns the number of elements.
func (r *Route) Len() int { return len(r.elements) }

// At returns the element at index i. It panics when i is out of range.
func (r *Route) At(i int) Element { return r.elements[i] }

// Elements returns a copy of the elements in order.
func (r *Route) Elements() []Element { return slices.Clone(r.elements) }

// All iterates the elements in order.
func (r *Route) All() iter.Seq2[int, Element] {
	return func(yield func(int, Element) bool) {
		for i, e := range r.elements {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Revision changes on every successful mutation.
func (r *Route) Revision() uint64 { return r.revision }

// Bounds returns the bounding box over every coordinate of the route.
func (r *Route) Bounds() (Bounds, bool) {
	var b Bounds
	seen := false
	add := func(c Coordinate) {
		if !seen {
			b = Bounds{MinX: c.X, MinY: c.Y, MaxX: c.X, MaxY: c.Y}
			seen = true
			return
		}
		b.MinX = min(b.MinX, c.X)
		b.MinY = min(b.MinY, c.Y)
		b.MaxX = max(b.MaxX, c.X)
		b.MaxY = max(b.MaxY, c.Y)
	}
	for _, e := range r.elements {
		if e.IsPolygon() {
			for _, c := range e.Ring {
				add(c)
			}
			continue
		}
		add(e.Point)
	}
	return b, seen
}
