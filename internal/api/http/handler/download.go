package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dtroode/audiograb-server/internal/api/http/ws"
	"github.com/dtroode/audiograb-server/internal/logger"
	"github.com/dtroode/audiograb-server/internal/model"
	"github.com/dtroode/audiograb-server/internal/platform"
	"github.com/dtroode/audiograb-server/internal/service"
)

// Download serves the REST endpoints of the download service.
type Download struct {
	svc           *service.Download
	hub           *ws.Hub
	defaultSizeMB int
	logger        *logger.Logger
}

func NewDownload(svc *service.Download, hub *ws.Hub, defaultSizeMB int, logger *logger.Logger) *Download {
	return &Download{
		svc:           svc,
		hub:           hub,
		defaultSizeMB: defaultSizeMB,
		logger:        logger,
	}
}

// Platforms lists supported and announced platforms.
func (h *Download) Platforms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, platformsResponse{
		Supported:  newPlatformResponses(platform.Supported()),
		ComingSoon: newPlatformResponses(platform.Upcoming()),
	})
}

// Status reports a download task.
func (h *Download) Status(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.Status(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(task))
}

type downloadURLRequest struct {
	URL     string `json:"url"`
	MaxSize *int   `json:"maxsize"`
}

// DownloadURL fetches a URL synchronously and answers with the file links.
func (h *Download) DownloadURL(w http.ResponseWriter, r *http.Request) {
	var body downloadURLRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid JSON body"})
		return
	}

	req := service.DownloadRequest{URL: body.URL, MaxSizeMB: h.defaultSizeMB}
	if body.MaxSize != nil {
		req.MaxSizeMB = *body.MaxSize
	}

	res, err := h.svc.Run(r.Context(), req, model.DiscardProgress)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, fileResponse{
		Message:      "File ready",
		DownloadURL:  res.DownloadURL,
		FileSizeMB:   res.FileSizeMB,
		ThumbnailURL: res.ThumbnailURL,
	})
}

// File serves a downloaded file.
func (h *Download) File(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file_name")

	content, err := h.svc.OpenFile(r.Context(), name)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer content.Body.Close()

	w.Header().Set("Content-Type", service.MediaType(name))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))

	if rs, ok := content.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, content.ModTime, rs)
		return
	}

	if content.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(content.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content.Body); err != nil {
		h.logger.Warn("Handler: file transfer interrupted", "file", name, "error", err)
	}
}

// Stats reports download directory statistics.
func (h *Download) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), h.hub.Count())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse(stats))
}

// Cleanup deletes every downloaded file.
func (h *Download) Cleanup(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Cleanup(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Deleted %d files", n)})
}
