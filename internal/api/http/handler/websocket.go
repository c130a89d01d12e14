package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dtroode/audiograb-server/internal/model"
	"github.com/dtroode/audiograb-server/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WebSocket streams the progress of one download to the client and closes
// the connection when the download ends. The download is canceled when the
// client goes away.
func (h *Download) WebSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Handler: websocket upgrade failed", "error", err)
		return
	}

	conn := h.hub.Register(raw)
	defer h.hub.Unregister(conn)

	log := h.logger.With("connection_id", conn.ID)
	log.Info("Handler: websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := raw.ReadMessage(); err != nil {
				return
			}
		}
	}()

	req := service.DownloadRequest{URL: r.URL.Query().Get("url"), MaxSizeMB: h.defaultSizeMB}
	if v := r.URL.Query().Get("maxsize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			n = 0
		}
		req.MaxSizeMB = n
	}

	res, err := h.svc.Run(ctx, req, conn)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("Handler: websocket disconnected")
			return
		}
		if werr := conn.Send(ctx, errorEvent(err)); werr != nil {
			log.Debug("Handler: error event not delivered", "error", werr)
		}
		return
	}

	size := res.FileSizeMB
	done := model.Event{
		Message:      "Download completed successfully! 🎵",
		DownloadURL:  res.DownloadURL,
		ThumbnailURL: res.ThumbnailURL,
		TaskID:       res.TaskID.String(),
		FileSizeMB:   &size,
	}
	if err := conn.Send(ctx, done); err != nil {
		log.Debug("Handler: result not delivered", "error", err)
	}
}

func errorEvent(err error) model.Event {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return model.Event{Error: "An error occurred: " + err.Error()}
	}

	ev := model.Event{
		Error:      apiErr.Message,
		ComingSoon: apiErr.ComingSoon,
		Platform:   apiErr.Platform,
	}
	if apiErr.TaskID != uuid.Nil {
		ev.TaskID = apiErr.TaskID.String()
	}
	return ev
}
