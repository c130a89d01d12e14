package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/audiograb-server/internal/api/http/handler"
	"github.com/dtroode/audiograb-server/internal/api/http/middleware"
	"github.com/dtroode/audiograb-server/internal/logger"
	"github.com/dtroode/audiograb-server/internal/model"
)

// Router wires HTTP handlers and middleware of the service.
type Router struct {
	download *handler.Download
	pages    *handler.Pages
	tokens   model.TokenManager
	logger   *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	download *handler.Download,
	pages *handler.Pages,
	tokens model.TokenManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		download: download,
		pages:    pages,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register builds the HTTP handler with every route mounted.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	admin := middleware.NewAdmin(r.tokens, r.logger)

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID, logging.Handle, chimw.Recoverer)

	mux.Get("/", r.pages.Index)
	mux.Get("/health", r.pages.Health)
	mux.Handle("/static/*", r.pages.Static("/static/"))
	mux.Get("/ws/download", r.download.WebSocket)

	mux.Route("/api", func(api chi.Router) {
		api.Get("/platforms", r.download.Platforms)
		api.Get("/download/status/{task_id}", r.download.Status)
		api.Post("/download/url", r.download.DownloadURL)
		api.Get("/file/{file_name}", r.download.File)
		api.Get("/stats", r.download.Stats)
		api.With(admin.Handle).Delete("/cleanup", r.download.Cleanup)
	})

	return mux
}
