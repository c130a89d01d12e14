package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/audiograb-server/internal/logger"
	"github.com/dtroode/audiograb-server/internal/model"
	"github.com/dtroode/audiograb-server/internal/platform"
)

const bytesInMB = 1024 * 1024

// DownloadRequest is a client request to fetch the audio behind a URL.
type DownloadRequest struct {
	URL       string
	MaxSizeMB int
}

type Download struct {
	store     model.DownloadStore
	fetcher   model.Fetcher
	files     model.FileStore
	archive   model.Storage
	maxSizeMB int
	logger    *logger.Logger
}

// NewDownload creates the download service. archive may be nil.
func NewDownload(
	store model.DownloadStore,
	fetcher model.Fetcher,
	files model.FileStore,
	archive model.Storage,
	maxSizeMB int,
	logger *logger.Logger,
) *Download {
	return &Download{
		store:     store,
		fetcher:   fetcher,
		files:     files,
		archive:   archive,
		maxSizeMB: maxSizeMB,
		logger:    logger,
	}
}

// MaxSizeMB is the upper bound accepted for DownloadRequest.MaxSizeMB.
func (s *Download) MaxSizeMB() int {
	return s.maxSizeMB
}

// Validate checks a request before any task is created.
func (s *Download) Validate(req DownloadRequest) error {
	if strings.TrimSpace(req.URL) == "" {
		return model.NewErrEmptyURL()
	}
	if req.MaxSizeMB <= 0 || req.MaxSizeMB > s.maxSizeMB {
		return model.NewErrInvalidMaxSize(s.maxSizeMB)
	}
	if !platform.IsSupported(req.URL) {
		if platform.IsComingSoon(req.URL) {
			return model.NewErrPlatformComingSoon(platform.Name(req.URL))
		}
		return model.NewErrUnsupportedPlatform()
	}
	return nil
}

// Run validates req, records a task and fetches the audio, reporting progress
// to sink. The task is left completed or failed.
func (s *Download) Run(ctx context.Context, req DownloadRequest, sink model.ProgressSink) (model.DownloadResult, error) {
	if err := s.Validate(req); err != nil {
		return model.DownloadResult{}, err
	}

	task, err := s.store.Create(ctx, model.Download{
		ID:        uuid.New(),
		URL:       req.URL,
		MaxSizeMB: req.MaxSizeMB,
		Status:    model.DownloadStatusCreated,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return model.DownloadResult{}, fmt.Errorf("failed to create download task: %w", err)
	}

	log := s.logger.With("task_id", task.ID.String())
	log.Info("Download service: task created", "url", req.URL, "maxsize", req.MaxSizeMB)

	start := model.ProgressEvent(0, fmt.Sprintf("Starting download from %s...", platform.Name(req.URL)))
	start.TaskID = task.ID.String()
	if err := sink.Send(ctx, start); err != nil {
		log.Debug("Download service: start event not delivered", "error", err)
	}

	task.Status = model.DownloadStatusDownloading
	if task, err = s.store.Update(ctx, task); err != nil {
		return model.DownloadResult{}, fmt.Errorf("failed to update download task: %w", err)
	}

	fetched, err := s.fetcher.Fetch(ctx, model.FetchRequest{
		URL:       req.URL,
		MaxSizeMB: req.MaxSizeMB,
		OutDir:    s.files.Dir(),
	}, sink)
	if err == nil {
		_, err = s.files.Stat(filepath.Base(fetched.MP3Path))
	}
	if err != nil {
		log.Error("Download service: fetch failed", "error", err)
		apiErr := model.NewErrDownloadFailed(req.MaxSizeMB, task.ID)
		s.markFailed(ctx, log, task, apiErr.Message)
		return model.DownloadResult{}, apiErr
	}

	done := task
	done.Status = model.DownloadStatusCompleted
	done.Progress = 100
	done.MP3Path = fetched.MP3Path
	done.ThumbPath = fetched.ThumbPath

	result, err := s.result(done)
	if err != nil {
		s.markFailed(ctx, log, task, err.Error())
		return model.DownloadResult{}, err
	}

	if _, err := s.store.Update(ctx, done); err != nil {
		s.markFailed(ctx, log, task, err.Error())
		return model.DownloadResult{}, fmt.Errorf("failed to update download task: %w", err)
	}

	s.archiveFiles(ctx, log, result.FileName, result.ThumbName)

	log.Info("Download service: task completed", "file", result.FileName, "size_mb", result.FileSizeMB)

	return result, nil
}

// markFailed records a failed outcome. The client may be gone, so the update
// does not inherit cancellation.
func (s *Download) markFailed(ctx context.Context, log *logger.Logger, task model.Download, reason string) {
	task.Status = model.DownloadStatusFailed
	task.Error = reason
	if _, err := s.store.Update(context.WithoutCancel(ctx), task); err != nil {
		log.Error("Download service: failed to mark task failed", "error", err)
	}
}

func (s *Download) result(task model.Download) (model.DownloadResult, error) {
	name := filepath.Base(task.MP3Path)
	info, err := s.files.Stat(name)
	if err != nil {
		return model.DownloadResult{}, fmt.Errorf("failed to stat downloaded file: %w", err)
	}

	res := model.DownloadResult{
		TaskID:      task.ID,
		FileName:    name,
		FileSizeMB:  roundMB(info.Size),
		DownloadURL: FileURL(name),
	}
	if task.ThumbPath != "" {
		thumb := filepath.Base(task.ThumbPath)
		if _, err := s.files.Stat(thumb); err == nil {
			res.ThumbName = thumb
			res.ThumbnailURL = FileURL(thumb)
		}
	}
	return res, nil
}

func (s *Download) archiveFiles(ctx context.Context, log *logger.Logger, names ...string) {
	if s.archive == nil {
		return
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := s.upload(ctx, name); err != nil {
			log.Warn("Download service: archive upload failed", "file", name, "error", err)
		}
	}
}

func (s *Download) upload(ctx context.Context, name string) error {
	f, err := s.files.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return s.archive.Upload(ctx, name, f, info.Size(), MediaType(name))
}

// Status returns the task with the given id.
func (s *Download) Status(ctx context.Context, taskID string) (model.Download, error) {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return model.Download{}, model.NewErrTaskNotFound()
	}

	task, err := s.store.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Download{}, model.NewErrTaskNotFound()
	}
	if err != nil {
		return model.Download{}, fmt.Errorf("failed to get download task: %w", err)
	}
	return task, nil
}

// Stats summarises the mp3 files currently in the download directory.
func (s *Download) Stats(_ context.Context, activeConnections int) (model.Stats, error) {
	files, err := s.files.List()
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to list downloads: %w", err)
	}

	var (
		count int
		total int64
	)
	for _, f := range files {
		if strings.HasSuffix(f.Name, ".mp3") {
			count++
			total += f.Size
		}
	}

	return model.Stats{
		TotalDownloads:      count,
		TotalSizeMB:         roundMB(total),
		ActiveConnections:   activeConnections,
		SupportedPlatforms:  platform.SupportedCount(),
		ComingSoonPlatforms: platform.ComingSoonCount(),
	}, nil
}

// Cleanup deletes every downloaded file and returns how many local files
// were removed. Archived copies are removed as well.
func (s *Download) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.files.RemoveAll()
	if err != nil {
		return removed, fmt.Errorf("failed to remove downloads: %w", err)
	}

	if s.archive != nil {
		archived, err := s.archive.DeleteAll(ctx)
		if err != nil {
			return removed, fmt.Errorf("failed to clear archive: %w", err)
		}
		s.logger.Info("Download service: archive cleared", "objects", archived)
	}

	s.logger.Info("Download service: cleanup done", "files", removed)
	return removed, nil
}

// OpenFile opens a downloaded file by name, falling back to the archive when
// the local copy is gone. The caller closes Body.
func (s *Download) OpenFile(ctx context.Context, name string) (model.FileContent, error) {
	if err := ValidateFileName(name); err != nil {
		return model.FileContent{}, err
	}

	f, err := s.files.Open(name)
	if err == nil {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return model.FileContent{}, fmt.Errorf("failed to stat file: %w", err)
		}
		return model.FileContent{Name: name, Size: info.Size(), ModTime: info.ModTime(), Body: f}, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.FileContent{}, fmt.Errorf("failed to open file: %w", err)
	}

	if s.archive != nil {
		content, err := s.archive.Open(ctx, name)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return model.FileContent{}, fmt.Errorf("failed to open archived file: %w", err)
		}
	}

	return model.FileContent{}, model.NewErrFileNotFound()
}

// ValidateFileName rejects names that could leave the download directory.
func ValidateFileName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return model.NewErrInvalidFileName()
	}
	return nil
}

// FileURL is the public path a downloaded file is served from.
func FileURL(name string) string {
	return "/api/file/" + name
}

// MediaType returns the content type served for a downloaded file.
func MediaType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func roundMB(size int64) float64 {
	return math.Round(float64(size)/bytesInMB*100) / 100
}
