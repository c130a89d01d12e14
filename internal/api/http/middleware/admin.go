package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dtroode/audiograb-server/internal/logger"
	"github.com/dtroode/audiograb-server/internal/model"
)

const bearerPrefix = "Bearer "

// Admin restricts a route to holders of an admin bearer token.
type Admin struct {
	tokens model.TokenManager
	logger *logger.Logger
}

// NewAdmin creates a new Admin middleware.
func NewAdmin(tokens model.TokenManager, logger *logger.Logger) *Admin {
	return &Admin{tokens: tokens, logger: logger}
}

// Handle rejects requests without a valid admin token with 401.
func (a *Admin) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(w)
			return
		}

		subject, err := a.tokens.ParseAdminToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			a.logger.Warn("Admin middleware: token rejected", "path", r.URL.Path, "error", err)
			unauthorized(w)
			return
		}

		a.logger.Info("Admin middleware: access granted", "subject", subject, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": "Unauthorized"})
}
