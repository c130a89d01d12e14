package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/audiograb-server/internal/model"
)

var _ model.DownloadStore = (*DownloadRepository)(nil)

type DownloadRepository struct {
	db *Connection
}

func NewDownloadRepository(db *Connection) *DownloadRepository {
	return &DownloadRepository{
		db: db,
	}
}

func (r *DownloadRepository) Create(ctx context.Context, d model.Download) (model.Download, error) {
	query := `
		INSERT INTO downloads (id, url, max_size_mb, status, progress, mp3_path, thumb_path, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, url, max_size_mb, status, progress, mp3_path, thumb_path, error, created_at, updated_at`

	var saved model.Download
	err := r.db.QueryRow(ctx, query,
		d.ID, d.URL, d.MaxSizeMB, string(d.Status), d.Progress, d.MP3Path, d.ThumbPath, d.Error, d.CreatedAt,
	).Scan(scanTargets(&saved)...)
	if err != nil {
		return model.Download{}, err
	}

	return saved, nil
}

func (r *DownloadRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Download, error) {
	query := `
		SELECT id, url, max_size_mb, status, progress, mp3_path, thumb_path, error, created_at, updated_at
		FROM downloads
		WHERE id = $1`

	var d model.Download
	err := r.db.QueryRow(ctx, query, id).Scan(scanTargets(&d)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Download{}, model.ErrNotFound
		}
		return model.Download{}, err
	}

	return d, nil
}

func (r *DownloadRepository) Update(ctx context.Context, d model.Download) (model.Download, error) {
	query := `
		UPDATE downloads
		SET status = $2, progress = $3, mp3_path = $4, thumb_path = $5, error = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id, url, max_size_mb, status, progress, mp3_path, thumb_path, error, created_at, updated_at`

	var saved model.Download
	err := r.db.QueryRow(ctx, query,
		d.ID, string(d.Status), d.Progress, d.MP3Path, d.ThumbPath, d.Error,
	).Scan(scanTargets(&saved)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Download{}, model.ErrNotFound
		}
		return model.Download{}, err
	}

	return saved, nil
}

func scanTargets(d *model.Download) []any {
	return []any{
		&d.ID, &d.URL, &d.MaxSizeMB, &d.Status, &d.Progress,
		&d.MP3Path, &d.ThumbPath, &d.Error, &d.CreatedAt, &d.UpdatedAt,
	}
}
