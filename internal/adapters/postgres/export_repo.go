package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// ExportRepo implements ports.ExportRepository. It also archives exports
// directly when no workflow engine is configured.
type ExportRepo struct {
	db *DB
}

func NewExportRepo(db *DB) *ExportRepo {
	return &ExportRepo{db: db}
}

// Insert stores rec. An existing row with the same ID is left untouched so
// that retried workflow activities stay idempotent.
func (r *ExportRepo) Insert(ctx context.Context, rec *domain.ExportRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO mission_exports (id, mission_id, name, mime_type, size, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.MissionID, rec.Name, rec.MIMEType, rec.Size, rec.Data, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert export %s: %w", rec.ID, err)
	}
	return nil
}

// Archive implements ports.ExportArchiver.
func (r *ExportRepo) Archive(ctx context.Context, missionID string, file domain.ExportFile) error {
	rec := file.Record(uuid.NewString(), missionID, time.Now().UTC())
	return r.Insert(ctx, &rec)
}

func (r *ExportRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM mission_exports WHERE id = $1`, id)
	return err
}

// ListByMission returns export metadata, newest first. File contents are
// not loaded.
func (r *ExportRepo) ListByMission(ctx context.Context, missionID string) ([]domain.ExportRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, mission_id, name, mime_type, size, created_at
		FROM mission_exports
		WHERE mission_id = $1
		ORDER BY created_at DESC
	`, missionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExportRecord
	for rows.Next() {
		var rec domain.ExportRecord
		if err := rows.Scan(&rec.ID, &rec.MissionID, &rec.Name, &rec.MIMEType, &rec.Size, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetByID returns one export including its contents.
func (r *ExportRepo) GetByID(ctx context.Context, id string) (*domain.ExportRecord, error) {
	rec := &domain.ExportRecord{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, mission_id, name, mime_type, size, data, created_at
		FROM mission_exports WHERE id = $1
	`, id).Scan(&rec.ID, &rec.MissionID, &rec.Name, &rec.MIMEType, &rec.Size, &rec.Data, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("export %s: %w", id, domain.ErrExportNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
