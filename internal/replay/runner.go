package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/ports"
	"github.com/samirrijal/missionsketch/internal/core/usecases"
)

// Result summarizes a replay.
type Result struct {
	MissionID string
	Applied   int
	Rejected  int
	Files     []string
	Final     domain.Snapshot
}

// Runner replays scripts against a mission service.
type Runner struct {
	Missions *usecases.MissionService
	Delivery ports.FileDelivery
	// DefaultFormat is used by export events that do not name one.
	DefaultFormat string
	// Strict stops at the first rejected event instead of logging it.
	Strict bool
}

// Run creates a mission and applies every event of s in order.
func (r *Runner) Run(ctx context.Context, s *Script) (Result, error) {
	snap, err := r.Missions.Create(ctx, s.Mission)
	if err != nil {
		return Result{}, fmt.Errorf("create mission: %w", err)
	}
	res := Result{MissionID: snap.Mission.ID}
	log := slog.With("mission", res.MissionID)

	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		snap, file, err := r.apply(ctx, res.MissionID, ev)
		if err != nil {
			if !isRejection(err) {
				return res, fmt.Errorf("event %d (%s): %w", i, ev.Op, err)
			}
			res.Rejected++
			log.Warn("event rejected", "index", i, "op", ev.Op, "error", err)
			if r.Strict {
				return res, fmt.Errorf("event %d (%s): %w", i, ev.Op, err)
			}
			continue
		}
		res.Applied++
		if file != "" {
			res.Files = append(res.Files, file)
		}
		log.Debug("event applied", "index", i, "op", ev.Op, "state", snap.State, "revision", snap.Revision)
	}

	final, err := r.Missions.Get(ctx, res.MissionID)
	if err != nil {
		return res, err
	}
	res.Final = final
	return res, nil
}

func (r *Runner) apply(ctx context.Context, id string, ev Event) (domain.Snapshot, string, error) {
	m := r.Missions
	switch ev.Op {
	case OpDraw:
		kind, err := domain.ParseGeometryKind(ev.Kind)
		if err != nil {
			return domain.Snapshot{}, "", err
		}
		snap, err := m.StartDrawing(ctx, id, kind)
		return snap, "", err
	case OpClick:
		snap, err := m.AddVertex(ctx, id, domain.Coordinate{X: ev.X, Y: ev.Y})
		return snap, "", err
	case OpFinish:
		snap, err := m.Finish(ctx, id)
		return snap, "", err
	case OpCancel:
		snap, err := m.Cancel(ctx, id)
		return snap, "", err
	case OpDiscard:
		snap, err := m.DiscardPending(ctx, id)
		return snap, "", err
	case OpImport:
		snap, err := m.ImportPolygon(ctx, id, *ev.Anchor, domain.Direction(ev.Direction))
		return snap, "", err
	case OpExport:
		format := ev.Format
		if format == "" {
			format = r.DefaultFormat
		}
		file, err := m.Export(ctx, id, format, r.Delivery)
		return domain.Snapshot{}, file.Name, err
	}
	return domain.Snapshot{}, "", fmt.Errorf("unknown op %q", ev.Op)
}

// isRejection reports whether err is an operator-level refusal that the
// session has already reported, as opposed to an infrastructure failure.
func isRejection(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidIndex,
		domain.ErrInvalidInsertion,
		domain.ErrInsufficientData,
		domain.ErrSessionBusy,
		domain.ErrStaleHandle,
		usecases.ErrUnsupportedFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
