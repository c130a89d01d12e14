package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const fallbackIndex = `<!DOCTYPE html>
<html>
<head>
    <title>Audio Downloader</title>
</head>
<body>
    <h1>Audio Downloader</h1>
    <p>Put an index.html file into the static/ directory.</p>
    <p>The API is served under <a href="/api/platforms">/api</a>.</p>
</body>
</html>
`

// Pages serves the landing page, static assets and the health check.
type Pages struct {
	staticDir string
	version   string
	now       func() time.Time
}

func NewPages(staticDir, version string) *Pages {
	return &Pages{staticDir: staticDir, version: version, now: time.Now}
}

// Index serves static/index.html, or a built-in page when it is missing.
func (h *Pages) Index(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticDir, "index.html")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(fallbackIndex))
		return
	}
	http.ServeFile(w, r, path)
}

// Static serves files of the static directory under prefix.
func (h *Pages) Static(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(h.staticDir)))
}

// Health reports liveness.
func (h *Pages) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: h.now(),
		Version:   h.version,
	})
}
