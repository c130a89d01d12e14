// Package memory keeps download tasks in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/audiograb-server/internal/model"
)

var _ model.DownloadStore = (*DownloadRepository)(nil)

// DownloadRepository is a map-backed model.DownloadStore. Tasks live until
// the process exits.
type DownloadRepository struct {
	mu        sync.RWMutex
	downloads map[uuid.UUID]model.Download
	now       func() time.Time
}

func NewDownloadRepository() *DownloadRepository {
	return &DownloadRepository{
		downloads: make(map[uuid.UUID]model.Download),
		now:       time.Now,
	}
}

func (r *DownloadRepository) Create(_ context.Context, d model.Download) (model.Download, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.downloads[d.ID]; ok {
		return model.Download{}, fmt.Errorf("download %s already exists", d.ID)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.now()
	}
	d.UpdatedAt = nil
	r.downloads[d.ID] = d

	return d, nil
}

func (r *DownloadRepository) GetByID(_ context.Context, id uuid.UUID) (model.Download, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.downloads[id]
	if !ok {
		return model.Download{}, model.ErrNotFound
	}
	return d, nil
}

// Update replaces the mutable fields of a task and stamps UpdatedAt.
func (r *DownloadRepository) Update(_ context.Context, d model.Download) (model.Download, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.downloads[d.ID]
	if !ok {
		return model.Download{}, model.ErrNotFound
	}

	now := r.now()
	cur.Status = d.Status
	cur.Progress = d.Progress
	cur.MP3Path = d.MP3Path
	cur.ThumbPath = d.ThumbPath
	cur.Error = d.Error
	cur.UpdatedAt = &now
	r.downloads[d.ID] = cur

	return cur, nil
}
