package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/ports"
)

// ArchiveInput is the input of the archive workflow. It carries the file
// contents explicitly because ExportRecord does not serialize them.
type ArchiveInput struct {
	ID        string
	MissionID string
	Name      string
	MIMEType  string
	Data      []byte
	CreatedAt time.Time
}

// NewArchiveInput builds the workflow input for a delivered file.
func NewArchiveInput(id, missionID string, file domain.ExportFile, at time.Time) ArchiveInput {
	return ArchiveInput{
		ID:        id,
		MissionID: missionID,
		Name:      file.Name,
		MIMEType:  file.MIMEType,
		Data:      file.Data,
		CreatedAt: at,
	}
}

// Record returns the archive record of the input.
func (in ArchiveInput) Record() domain.ExportRecord {
	file := domain.ExportFile{Name: in.Name, MIMEType: in.MIMEType, Data: in.Data}
	return file.Record(in.ID, in.MissionID, in.CreatedAt)
}

// ExportPublisher announces archived exports.
type ExportPublisher interface {
	PublishExported(ctx context.Context, rec *domain.ExportRecord) error
}

// ArchiveActivities holds the activity implementations of the archive workflow.
type ArchiveActivities struct {
	Exports   ports.ExportRepository
	Publisher ExportPublisher // optional
}

// StoreExport persists the export. Inserting the same ID twice is a no-op.
func (a *ArchiveActivities) StoreExport(ctx context.Context, in ArchiveInput) error {
	rec := in.Record()
	if err := a.Exports.Insert(ctx, &rec); err != nil {
		return fmt.Errorf("store export %s: %w", in.ID, err)
	}
	activity.GetLogger(ctx).Info("export stored", "id", in.ID, "mission", in.MissionID, "size", rec.Size)
	return nil
}

// PublishExported announces the stored export on the mission's event stream.
func (a *ArchiveActivities) PublishExported(ctx context.Context, in ArchiveInput) error {
	if a.Publisher == nil {
		activity.GetLogger(ctx).Debug("no publisher, export not announced", "id", in.ID)
		return nil
	}
	rec := in.Record()
	rec.Data = nil
	if err := a.Publisher.PublishExported(ctx, &rec); err != nil {
		return fmt.Errorf("publish export %s: %w", in.ID, err)
	}
	return nil
}

// DeleteExport removes a stored export (saga compensation).
func (a *ArchiveActivities) DeleteExport(ctx context.Context, id string) error {
	if err := a.Exports.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete export %s: %w", id, err)
	}
	activity.GetLogger(ctx).Info("export deleted (saga compensation)", "id", id)
	return nil
}
