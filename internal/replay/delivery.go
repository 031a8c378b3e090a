package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// DirDelivery writes each export into Dir under the export's own file name,
// replacing any earlier file of the same name.
type DirDelivery struct {
	Dir string
}

func (d DirDelivery) Deliver(ctx context.Context, file domain.ExportFile) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(file.Name))
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.InfoContext(ctx, "export written", "path", path, "bytes", len(file.Data))
	return nil
}

// LogNotifier reports session outcomes and panel signals through slog.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

func (n LogNotifier) ReportSuccess(ctx context.Context, missionID, message string) error {
	n.logger().InfoContext(ctx, message, "mission", missionID, "outcome", "success")
	return nil
}

func (n LogNotifier) ReportError(ctx context.Context, missionID, message string) error {
	n.logger().WarnContext(ctx, message, "mission", missionID, "outcome", "error")
	return nil
}

func (n LogNotifier) ShowMissionPanel(ctx context.Context, missionID string) error {
	n.logger().DebugContext(ctx, "show mission panel", "mission", missionID)
	return nil
}

func (n LogNotifier) ShowPolygonPanel(ctx context.Context, missionID string, vertexCount int) error {
	n.logger().DebugContext(ctx, "show polygon panel", "mission", missionID, "vertices", vertexCount)
	return nil
}
