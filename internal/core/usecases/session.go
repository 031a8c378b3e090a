package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/ports"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
)

// Messages shown to the operator.
const (
	msgPolygonImported = "Polygon imported successfully"
	msgPolygonFailed   = "Polygon import failed: "
	msgExported        = "Route exported to "
	navigationHint     = "Click on the map to mark points of the route and then press ↵ to complete the route."
	hintThreshold      = 4
)

// SessionConfig holds the collaborators of a Session. Notifier and Panels
// may be nil.
type SessionConfig struct {
	Surface  ports.DrawingSurface
	Notifier ports.Notifier
	Panels   ports.PanelSignaler
	Distance geospatial.Calculator
	Mode     domain.InsertMode
}

// Session drives the drawing of one mission route. It is not safe for
// concurrent use; callers serialize operator actions.
type Session struct {
	mission  domain.Mission
	surface  ports.DrawingSurface
	notifier ports.Notifier
	panels   ports.PanelSignaler
	distance geospatial.Calculator
	mode     domain.InsertMode

	state     domain.SessionState
	handle    domain.DrawHandle
	route     *domain.Route
	pending   domain.PolygonEntry
	lineDrawn bool
}

// NewSession creates an idle session with an empty route.
func NewSession(mission domain.Mission, cfg SessionConfig) *Session {
	if cfg.Distance == nil {
		cfg.Distance = geospatial.PlanarDistance
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.InsertVertices
	}
	return &Session{
		mission:  mission,
		surface:  cfg.Surface,
		notifier: cfg.Notifier,
		panels:   cfg.Panels,
		distance: cfg.Distance,
		mode:     cfg.Mode,
		state:    domain.StateIdle,
		route:    domain.NewRoute(),
	}
}

// Mission returns the mission this session belongs to.
func (s *Session) Mission() domain.Mission { return s.mission }

// State returns the current interaction mode.
func (s *Session) State() domain.SessionState { return s.state }

// Handle returns the active draw handle, empty while idle.
func (s *Session) Handle() domain.DrawHandle { return s.handle }

// Route exposes the route for read-only use by exporters.
func (s *Session) Route() *domain.Route { return s.route }

// Pending returns a copy of the polygon waiting to be imported.
func (s *Session) Pending() domain.PolygonEntry { return slices.Clone(s.pending) }

// StartDrawing activates a drawing handle for kind. An unavailable surface
// makes this a silent no-op.
func (s *Session) StartDrawing(ctx context.Context, kind domain.GeometryKind) error {
	if s.state != domain.StateIdle {
		err := fmt.Errorf("%w: %s in progress", domain.ErrSessionBusy, s.state)
		s.reportError(ctx, "A drawing is already in progress")
		return err
	}
	if kind == domain.KindPolygon && len(s.pending) > 0 {
		err := fmt.Errorf("%w: %w", domain.ErrSessionBusy, domain.ErrPolygonPending)
		s.reportError(ctx, "Import or discard the pending polygon before drawing another one")
		return err
	}
	if s.surface == nil {
		return nil
	}

	handle, err := s.surface.BeginDraw(ctx, kind)
	if errors.Is(err, ports.ErrSurfaceUnavailable) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("begin draw: %w", err)
	}

	s.handle = handle
	if kind == domain.KindPolygon {
		s.state = domain.StateDrawingPolygon
	} else {
		s.state = domain.StateDrawingLine
	}
	return nil
}

// Complete finishes the active draw with the given vertices.
func (s *Session) Complete(ctx context.Context, handle domain.DrawHandle, vertices []domain.Coordinate) error {
	if s.state == domain.StateIdle || handle != s.handle {
		return fmt.Errorf("complete %q: %w", handle, domain.ErrStaleHandle)
	}

	switch s.state {
	case domain.StateDrawingLine:
		for _, v := range vertices {
			s.route.Append(v)
		}
		first := !s.lineDrawn && len(vertices) > 0
		if len(vertices) > 0 {
			s.lineDrawn = true
		}
		s.release(ctx)
		if first && s.panels != nil {
			if err := s.panels.ShowMissionPanel(ctx, s.mission.ID); err != nil {
				slog.Warn("show mission panel", "mission", s.mission.ID, "error", err)
			}
		}
	case domain.StateDrawingPolygon:
		s.pending = domain.PolygonEntry(vertices).Close()
		s.release(ctx)
		if s.panels != nil {
			if err := s.panels.ShowPolygonPanel(ctx, s.mission.ID, len(s.pending)); err != nil {
				slog.Warn("show polygon panel", "mission", s.mission.ID, "error", err)
			}
		}
	}
	return nil
}

// Finish completes the active draw with whatever the surface holds so far.
// It is ignored while idle.
func (s *Session) Finish(ctx context.Context) error {
	if s.state == domain.StateIdle {
		return nil
	}
	var vertices []domain.Coordinate
	if s.surface != nil {
		sketch, err := s.surface.Sketch(ctx, s.handle)
		if err != nil {
			return fmt.Errorf("read sketch: %w", err)
		}
		vertices = sketch
	}
	return s.Complete(ctx, s.handle, vertices)
}

// Cancel discards the active draw without touching the route.
func (s *Session) Cancel(ctx context.Context) error {
	if s.state == domain.StateIdle {
		return nil
	}
	s.release(ctx)
	return nil
}

// DiscardPending drops the pending polygon, if any.
func (s *Session) DiscardPending(_ context.Context) error {
	s.pending = nil
	return nil
}

// ImportPolygon splices the pending polygon next to the waypoint at anchor.
func (s *Session) ImportPolygon(ctx context.Context, anchor int, dir domain.Direction) error {
	if err := ResolveInsertion(s.route, anchor, dir, s.pending, s.mode); err != nil {
		reason := err.Error()
		var ie *InsertionError
		if errors.As(err, &ie) {
			reason = ie.Reason
		}
		s.reportError(ctx, msgPolygonFailed+reason)
		return err
	}
	s.pending = nil
	s.reportSuccess(ctx, msgPolygonImported)
	return nil
}

// Export renders the route and hands the file to delivery.
func (s *Session) Export(ctx context.Context, exporter Exporter, delivery ports.FileDelivery) (domain.ExportFile, error) {
	file, err := exporter.Export(ctx, s.route)
	if err != nil {
		s.reportError(ctx, "Export failed: "+err.Error())
		return domain.ExportFile{}, err
	}
	if delivery != nil {
		if err := delivery.Deliver(ctx, file); err != nil {
			s.reportError(ctx, "Export failed: "+err.Error())
			return domain.ExportFile{}, fmt.Errorf("deliver %s: %w", file.Name, err)
		}
	}
	s.reportSuccess(ctx, msgExported+file.Name)
	return file, nil
}

// Legs returns the leg table of the current route.
func (s *Session) Legs() []domain.Leg {
	return Legs(s.route, s.distance)
}

// Snapshot returns a read-only view of the session.
func (s *Session) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Mission:  s.mission,
		State:    s.state,
		Handle:   s.handle,
		Route:    s.route.Elements(),
		Revision: s.route.Revision(),
		Pending:  slices.Clone(s.pending),
		Legs:     s.Legs(),
	}
	if b, ok := s.route.Bounds(); ok {
		snap.Bounds = &b
	}
	if s.route.Len() < hintThreshold {
		snap.Hint = navigationHint
	}
	return snap
}

// release returns the session to idle and frees the surface handle.
func (s *Session) release(ctx context.Context) {
	if s.surface != nil && s.handle != "" {
		if err := s.surface.Cancel(ctx, s.handle); err != nil {
			slog.Debug("release draw handle", "mission", s.mission.ID, "handle", s.handle, "error", err)
		}
	}
	s.state = domain.StateIdle
	s.handle = ""
}

func (s *Session) reportError(ctx context.Context, msg string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ReportError(ctx, s.mission.ID, msg); err != nil {
		slog.Warn("report error", "mission", s.mission.ID, "error", err)
	}
}

func (s *Session) reportSuccess(ctx context.Context, msg string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ReportSuccess(ctx, s.mission.ID, msg); err != nil {
		slog.Warn("report success", "mission", s.mission.ID, "error", err)
	}
}
