package domain

import (
	"fmt"
	"time"
)

// Mission identifies one sketching session and its route.
type Mission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionState is the interaction mode of a drawing session.
type SessionState string

const (
	StateIdle           SessionState = "idle"
	StateDrawingLine    SessionState = "drawing-line"
	StateDrawingPolygon SessionState = "drawing-polygon"
)

// GeometryKind is the kind of shape the operator draws.
type GeometryKind string

const (
	KindLine    GeometryKind = "line"
	KindPolygon GeometryKind = "polygon"
)

// ParseGeometryKind validates a kind received from a client.
func ParseGeometryKind(s string) (GeometryKind, error) {
	switch k := GeometryKind(s); k {
	case KindLine, KindPolygon:
		return k, nil
	}
	return "", fmt.Errorf("unknown geometry kind %q", s)
}

// Direction places an inserted polygon relative to its anchor waypoint.
type Direction string

const (
	Before Direction = "before"
	After  Direction = "after"
)

// ParseDirection validates a direction received from a client.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Before, After:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// DrawHandle identifies an active drawing operation on the surface.
type DrawHandle string

// InsertMode controls how a polygon is spliced into the route.
type InsertMode string

const (
	// InsertVertices splices the ring's vertices as individual waypoints.
	InsertVertices InsertMode = "vertices"
	// InsertArea splices the ring as a single polygon element.
	InsertArea InsertMode = "area"
)

// ExportFile is a rendered export ready for delivery.
type ExportFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// ExportRecord is an archived export.
type ExportRecord struct {
	ID        string    `json:"id"`
	MissionID string    `json:"mission_id"`
	Name      string    `json:"name"`
	MIMEType  string    `json:"mime_type"`
	Size      int       `json:"size"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Record builds the archive record of a delivered file.
func (f ExportFile) Record(id, missionID string, at time.Time) ExportRecord {
	return ExportRecord{
		ID:        id,
		MissionID: missionID,
		Name:      f.Name,
		MIMEType:  f.MIMEType,
		Size:      len(f.Data),
		Data:      f.Data,
		CreatedAt: at,
	}
}

// Leg is one row of the waypoint list: an element and its distance from the previous one.
type Leg struct {
	Index      int        `json:"index"`
	Label      string     `json:"wp"`
	Polygon    bool       `json:"polygon"`
	Point      Coordinate `json:"point"`
	Text       string     `json:"coordinates"`
	Distance   float64    `json:"distance"`
	Computable bool       `json:"computable"`
	Display    string     `json:"distance_text"`
	Actions    []string   `json:"actions,omitempty"`
}

// Row actions offered on waypoint rows of the leg table.
const (
	ActionInsertPolygonBefore = "insert-polygon-before"
	ActionInsertPolygonAfter  = "insert-polygon-after"
)

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Mission  Mission      `json:"mission"`
	State    SessionState `json:"state"`
	Handle   DrawHandle   `json:"handle,omitempty"`
	Route    []Element    `json:"route"`
	Revision uint64       `json:"revision"`
	Pending  PolygonEntry `json:"pending_polygon,omitempty"`
	Legs     []Leg        `json:"legs"`
	Bounds   *Bounds      `json:"bounds,omitempty"`
	Hint     string       `json:"hint,omitempty"`
}
