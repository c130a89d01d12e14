package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DownloadStore defines persistence operations for download tasks.
type DownloadStore interface {
	Create(ctx context.Context, download Download) (Download, error)
	GetByID(ctx context.Context, id uuid.UUID) (Download, error)
	Update(ctx context.Context, download Download) (Download, error)
}

// Download represents a tracked download task.
type Download struct {
	ID        uuid.UUID
	URL       string
	MaxSizeMB int
	Status    DownloadStatus
	Progress  float64
	CreatedAt time.Time
	UpdatedAt *time.Time
	MP3Path   string
	ThumbPath string
	Error     string
}

// DownloadStatus enumerates task states.
type DownloadStatus string

const (
	// DownloadStatusCreated is a task that has not started fetching yet.
	DownloadStatusCreated DownloadStatus = "created"
	// DownloadStatusDownloading is a task with a fetch in flight.
	DownloadStatusDownloading DownloadStatus = "downloading"
	// DownloadStatusCompleted is a task whose mp3 is available.
	DownloadStatusCompleted DownloadStatus = "completed"
	// DownloadStatusFailed is a task that ended with an error.
	DownloadStatusFailed DownloadStatus = "failed"
)

// DownloadResult describes a finished download as exposed to clients.
type DownloadResult struct {
	TaskID       uuid.UUID
	FileName     string
	ThumbName    string
	FileSizeMB   float64
	DownloadURL  string
	ThumbnailURL string
}

// Stats summarises the download directory and live connections.
type Stats struct {
	TotalDownloads      int
	TotalSizeMB         float64
	ActiveConnections   int
	SupportedPlatforms  int
	ComingSoonPlatforms int
}
