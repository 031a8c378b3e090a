package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/ports"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
	"github.com/samirrijal/missionsketch/internal/pkg/metrics"
	"github.com/samirrijal/missionsketch/internal/pkg/telemetry"
)

// ErrArchiveDisabled is returned when archived exports are requested but no
// archive is configured.
var ErrArchiveDisabled = errors.New("export archive disabled")

// MissionServiceConfig wires the collaborators shared by every mission.
type MissionServiceConfig struct {
	Surface  ports.SketchSurface
	Notifier ports.Notifier
	Panels   ports.PanelSignaler
	Distance geospatial.Calculator
	Mode     domain.InsertMode

	// Optional export plumbing.
	Cache    ports.CacheService
	CacheTTL time.Duration
	Archiver ports.ExportArchiver
	Exports  ports.ExportRepository
}

type missionEntry struct {
	mu      sync.Mutex
	session *Session
	closed  bool
}

// MissionService keeps one drawing session per mission and serializes the
// operator actions sent to it.
type MissionService struct {
	cfg MissionServiceConfig
	now func() time.Time

	mu       sync.RWMutex
	missions map[string]*missionEntry
}

// NewMissionService creates a new MissionService.
func NewMissionService(cfg MissionServiceConfig) *MissionService {
	if cfg.Distance == nil {
		cfg.Distance = geospatial.PlanarDistance
	}
	return &MissionService{
		cfg:      cfg,
		now:      time.Now,
		missions: make(map[string]*missionEntry),
	}
}

// Create starts a new mission with an empty route and an idle session.
func (s *MissionService) Create(_ context.Context, name string) (domain.Snapshot, error) {
	id := uuid.NewString()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Mission " + id[:8]
	}
	mission := domain.Mission{ID: id, Name: name, CreatedAt: s.now().UTC()}

	var surface ports.DrawingSurface
	if s.cfg.Surface != nil {
		surface = s.cfg.Surface
	}
	session := NewSession(mission, SessionConfig{
		Surface:  surface,
		Notifier: s.cfg.Notifier,
		Panels:   s.cfg.Panels,
		Distance: s.cfg.Distance,
		Mode:     s.cfg.Mode,
	})

	s.mu.Lock()
	s.missions[id] = &missionEntry{session: session}
	s.mu.Unlock()
	metrics.MissionsActive.Inc()

	return session.Snapshot(), nil
}

// List returns every live mission, oldest first.
func (s *MissionService) List(_ context.Context) []domain.Mission {
	s.mu.RLock()
	out := make([]domain.Mission, 0, len(s.missions))
	for _, e := range s.missions {
		out = append(out, e.session.Mission())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Mission) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Get returns the snapshot of a mission.
func (s *MissionService) Get(ctx context.Context, id string) (domain.Snapshot, error) {
	return s.snapshotAfter(ctx, id, nil)
}

// Close discards a mission, cancelling any active draw.
func (s *MissionService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.missions[id]
	delete(s.missions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("mission %s: %w", id, domain.ErrMissionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	metrics.MissionsActive.Dec()

	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.DeleteMatching(ctx, "export:"+id+":*"); err != nil {
			slog.Warn("evict mission exports", "mission", id, "error", err)
		}
	}
	return e.session.Cancel(ctx)
}

// StartDrawing begins a line or polygon draw.
func (s *MissionService) StartDrawing(ctx context.Context, id string, kind domain.GeometryKind) (domain.Snapshot, error) {
	return s.snapshotAfter(ctx, id, func(sess *Session) error {
		err := sess.StartDrawing(ctx, kind)
		outcome := metrics.Outcome(err)
		if err == nil && sess.State() == domain.StateIdle {
			outcome = "unavailable"
		}
		metrics.SessionDraws.WithLabelValues(string(kind), outcome).Inc()
		return err
	})
}

// AddVertex records an operator click on the active draw.
func (s *MissionService) AddVertex(ctx context.Context, id string, c domain.Coordinate) (domain.Snapshot, error) {
	return s.snapshotAfter(ctx, id, func(sess *Session) error {
		if sess.State() == domain.StateIdle || s.cfg.Surface == nil {
			return fmt.Errorf("add vertex: no active draw: %w", domain.ErrStaleHandle)
		}
		return s.cfg.Surface.AddVertex(ctx, sess.Handle(), c)
	})
}

// Complete finishes the draw identified by handle with vertices.
func (s *MissionService) Complete(ctx context.Context, id string, handle domain.DrawHandle, vertices []domain.Coordinate) (domain.Snapshot, error) {
	return s.snapshotAfter(ctx, id, func(sess *Session) error {
		return sess.Complete(ctx, handle, vertices)
	})
}

// Finish completes the active draw with the vertices placed so far.
func (s *MissionService) Finish(ctx context.Context, id string) (domain.Snapshot, error) {
	return s.snapshotAfter(ctx, id, func(sess *Session) error {
		return sess.Finish(ctx)
	})
}

// Cancel discards the active draw.
func (s *MissionService) Cancel(ctx context.Context, id string) (domain.Snapshot, error) {
	return s.snapshotAfter(ctx, id, func(sess *Session) error {
		return sess.Cancel(ctx)
	})
}

// DiscardPending drops the polygon waiting to be imported.
func (s *MissionService) DiscardPending(ctx context.Context, id string) (domain.Snapshot, error) {
	return s.snapshotAfter(ctx, id, func(sess *Session) error {
		return sess.DiscardPending(ctx)
	})
}

// ImportPolygon splices the pending polygon next to the waypoint at anchor.
func (s *MissionService) ImportPolygon(ctx context.Context, id string, anchor int, dir domain.Direction) (domain.Snapshot, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "mission.import_polygon")
	defer span.End()
	span.SetAttributes(
		attribute.String("mission.id", id),
		attribute.Int("polygon.anchor", anchor),
		attribute.String("polygon.direction", string(dir)),
	)

	snap, err := s.snapshotAfter(ctx, id, func(sess *Session) error {
		err := sess.ImportPolygon(ctx, anchor, dir)
		metrics.PolygonImports.WithLabelValues(metrics.Outcome(err)).Inc()
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return snap, err
}

// Legs returns the leg table of a mission's route.
func (s *MissionService) Legs(ctx context.Context, id string) ([]domain.Leg, error) {
	var legs []domain.Leg
	err := s.withSession(id, func(sess *Session) error {
		legs = sess.Legs()
		return nil
	})
	return legs, err
}

// Export renders the route in the requested format and hands it to delivery.
func (s *MissionService) Export(ctx context.Context, id, format string, delivery ports.FileDelivery) (domain.ExportFile, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "mission.export")
	defer span.End()
	span.SetAttributes(attribute.String("mission.id", id), attribute.String("export.format", format))

	exporter, err := NewExporter(format, s.cfg.Distance)
	if err != nil {
		return domain.ExportFile{}, err
	}
	if s.cfg.Cache != nil {
		exporter = NewCachedExporter(exporter, s.cfg.Cache, id, s.cfg.CacheTTL)
	}
	if s.cfg.Archiver != nil {
		delivery = NewArchivingDelivery(delivery, s.cfg.Archiver, id)
	}

	start := time.Now()
	var file domain.ExportFile
	err = s.withSession(id, func(sess *Session) error {
		var err error
		file, err = sess.Export(ctx, exporter, delivery)
		return err
	})
	metrics.ExportDuration.WithLabelValues(exporter.Format()).Observe(time.Since(start).Seconds())
	metrics.Exports.WithLabelValues(exporter.Format(), metrics.Outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ExportFile{}, err
	}
	span.SetAttributes(attribute.Int("export.size", len(file.Data)))
	return file, nil
}

// ListExports returns the archived exports of a mission.
func (s *MissionService) ListExports(ctx context.Context, id string) ([]domain.ExportRecord, error) {
	if s.cfg.Exports == nil {
		return nil, ErrArchiveDisabled
	}
	if err := s.withSession(id, func(*Session) error { return nil }); err != nil {
		return nil, err
	}
	return s.cfg.Exports.ListByMission(ctx, id)
}

func (s *MissionService) entry(id string) (*missionEntry, error) {
	s.mu.RLock()
	e, ok := s.missions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("mission %s: %w", id, domain.ErrMissionNotFound)
	}
	return e, nil
}

// withSession runs fn while holding the mission's lock.
func (s *MissionService) withSession(id string, fn func(*Session) error) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("mission %s: %w", id, domain.ErrMissionNotFound)
	}
	return fn(e.session)
}

// snapshotAfter runs fn and returns the resulting snapshot. The snapshot is
// returned alongside fn's error so callers can show the unchanged state.
func (s *MissionService) snapshotAfter(_ context.Context, id string, fn func(*Session) error) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.withSession(id, func(sess *Session) error {
		var err error
		if fn != nil {
			err = fn(sess)
		}
		snap = sess.Snapshot()
		return err
	})
	return snap, err
}
