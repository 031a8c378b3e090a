package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// ErrSurfaceUnavailable is returned by a DrawingSurface that cannot draw right now.
var ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

// DrawingSurface is the map the operator draws on.
type DrawingSurface interface {
	// BeginDraw activates an exclusive drawing interaction for the given kind.
	BeginDraw(ctx context.Context, kind domain.GeometryKind) (domain.DrawHandle, error)
	// Sketch returns the vertices placed so far for an active handle.
	Sketch(ctx context.Context, handle domain.DrawHandle) ([]domain.Coordinate, error)
	// Cancel discards an active handle and its partial geometry.
	Cancel(ctx context.Context, handle domain.DrawHandle) error
}

// SketchSurface is a DrawingSurface fed with operator clicks over the API.
type SketchSurface interface {
	DrawingSurface
	AddVertex(ctx context.Context, handle domain.DrawHandle, c domain.Coordinate) error
}

// Notifier reports operation outcomes to the operator.
type Notifier interface {
	ReportSuccess(ctx context.Context, missionID, message string) error
	ReportError(ctx context.Context, missionID, message string) error
}

// PanelSignaler asks the client to open mission panels.
type PanelSignaler interface {
	ShowMissionPanel(ctx context.Context, missionID string) error
	ShowPolygonPanel(ctx context.Context, missionID string, vertexCount int) error
}

// FileDelivery hands a rendered export to whoever triggers the download.
type FileDelivery interface {
	Deliver(ctx context.Context, file domain.ExportFile) error
}

// ExportArchiver records delivered exports.
type ExportArchiver interface {
	Archive(ctx context.Context, missionID string, file domain.ExportFile) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	// DeleteMatching removes every key matching a glob pattern.
	DeleteMatching(ctx context.Context, pattern string) error
}
