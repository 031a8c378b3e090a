package usecases

import (
	"fmt"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// InsertionError explains why a polygon could not be spliced into a route.
type InsertionError struct {
	Reason string
}

func (e *InsertionError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrInvalidInsertion, e.Reason)
}

func (e *InsertionError) Unwrap() error { return domain.ErrInvalidInsertion }

// SpliceIndex returns where a polygon anchored at anchor goes.
func SpliceIndex(anchor int, dir domain.Direction) int {
	if dir == domain.After {
		return anchor + 1
	}
	return anchor
}

// ResolveInsertion splices pending into route next to the waypoint at anchor.
// On any precondition failure the route is left untouched.
func ResolveInsertion(route *domain.Route, anchor int, dir domain.Direction, pending domain.PolygonEntry, mode domain.InsertMode) error {
	if len(pending) == 0 {
		return &InsertionError{Reason: "no polygon is pending"}
	}
	if dir != domain.Before && dir != domain.After {
		return &InsertionError{Reason: fmt.Sprintf("unknown direction %q", dir)}
	}
	if anchor < 0 || anchor >= route.Len() {
		return &InsertionError{Reason: fmt.Sprintf("waypoint %d does not exist (route has %d)", anchor, route.Len())}
	}

	var entries []domain.Element
	switch mode {
	case domain.InsertArea:
		entries = []domain.Element{domain.Polygon(pending)}
	case domain.InsertVertices, "":
		entries = make([]domain.Element, 0, len(pending))
		for _, c := range pending {
			entries = append(entries, domain.Waypoint(c))
		}
	default:
		return &InsertionError{Reason: fmt.Sprintf("unknown insert mode %q", mode)}
	}

	if err := route.SpliceAt(SpliceIndex(anchor, dir), entries...); err != nil {
		return &InsertionError{Reason: err.Error()}
	}
	return nil
}
