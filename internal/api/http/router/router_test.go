package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/audiograb-server/internal/api/http/handler"
	"github.com/dtroode/audiograb-server/internal/api/http/ws"
	servermocks "github.com/dtroode/audiograb-server/internal/mocks"
	"github.com/dtroode/audiograb-server/internal/repository/memory"
	"github.com/dtroode/audiograb-server/internal/service"
	"github.com/dtroode/audiograb-server/internal/storage/local"
	"github.com/dtroode/audiograb-server/internal/testutil"
)

func newTestRouter(t *testing.T, tokens *servermocks.TokenManager) http.Handler {
	t.Helper()

	log := testutil.MakeNoopLogger()
	svc := service.NewDownload(memory.NewDownloadRepository(), servermocks.NewFetcher(t),
		local.NewFileStore(t.TempDir()), nil, 50, log)
	download := handler.NewDownload(svc, ws.NewHub(), 15, log)
	pages := handler.NewPages(t.TempDir(), "test")

	return New(download, pages, tokens, log).Register()
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, servermocks.NewTokenManager(t))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/static/missing.js", http.StatusNotFound},
		{http.MethodGet, "/api/platforms", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodGet, "/api/download/status/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/file/missing.mp3", http.StatusNotFound},
		{http.MethodPost, "/api/platforms", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
		{http.MethodGet, "/ws/download", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_CleanupRequiresAdmin(t *testing.T) {
	t.Parallel()

	tokens := servermocks.NewTokenManager(t)
	tokens.On("ParseAdminToken", "admin-token").Return("ops", nil).Once()
	h := newTestRouter(t, tokens)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cleanup", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/cleanup", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Deleted 0 files"}`, rec.Body.String())
}
