package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dtroode/audiograb-server/internal/logger"
	"github.com/dtroode/audiograb-server/internal/model"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type comingSoonResponse struct {
	Error      string `json:"error"`
	ComingSoon bool   `json:"coming_soon"`
	Platform   string `json:"platform"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type fileResponse struct {
	Message      string  `json:"message"`
	DownloadURL  string  `json:"download_url"`
	TaskID       string  `json:"task_id,omitempty"`
	FileSizeMB   float64 `json:"file_size_mb"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

type taskResponse struct {
	URL       string     `json:"url"`
	MaxSize   int        `json:"maxsize"`
	Status    string     `json:"status"`
	Progress  float64    `json:"progress"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	MP3Path   *string    `json:"mp3_path"`
	ThumbPath *string    `json:"thumb_path"`
	Error     *string    `json:"error"`
}

type statsResponse struct {
	TotalDownloads      int     `json:"total_downloads"`
	TotalSizeMB         float64 `json:"total_size_mb"`
	ActiveConnections   int     `json:"active_connections"`
	SupportedPlatforms  int     `json:"supported_platforms"`
	ComingSoonPlatforms int     `json:"coming_soon_platforms"`
}

type platformResponse struct {
	Name             string   `json:"name"`
	Domains          []string `json:"domains"`
	Status           string   `json:"status"`
	EstimatedRelease string   `json:"estimated_release,omitempty"`
	Features         []string `json:"features"`
}

type platformsResponse struct {
	Supported  []platformResponse `json:"supported"`
	ComingSoon []platformResponse `json:"coming_soon"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func newTaskResponse(d model.Download) taskResponse {
	return taskResponse{
		URL:       d.URL,
		MaxSize:   d.MaxSizeMB,
		Status:    string(d.Status),
		Progress:  d.Progress,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		MP3Path:   optional(d.MP3Path),
		ThumbPath: optional(d.ThumbPath),
		Error:     optional(d.Error),
	}
}

func newPlatformResponses(platforms []model.Platform) []platformResponse {
	out := make([]platformResponse, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, platformResponse{
			Name:             p.Name,
			Domains:          p.Domains,
			Status:           string(p.Status),
			EstimatedRelease: p.EstimatedRelease,
			Features:         p.Features,
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleError writes err as a JSON response. API errors keep their status and
// message; anything else is logged and reported as an internal error.
func handleError(w http.ResponseWriter, log *logger.Logger, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ComingSoon {
			writeJSON(w, apiErr.HTTPStatus, comingSoonResponse{
				Error:      apiErr.Message,
				ComingSoon: true,
				Platform:   apiErr.Platform,
			})
			return
		}
		writeJSON(w, apiErr.HTTPStatus, errorResponse{Detail: apiErr.Message})
		return
	}

	log.Error("Handler: request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
}
