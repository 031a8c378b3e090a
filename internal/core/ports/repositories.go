package ports

import (
	"context"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// ExportRepository persists archived exports.
type ExportRepository interface {
	Insert(ctx context.Context, rec *domain.ExportRecord) error
	Delete(ctx context.Context, id string) error
	ListByMission(ctx context.Context, missionID string) ([]domain.ExportRecord, error)
}
