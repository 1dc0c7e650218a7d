package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/granaflow/backend/internal/service"
	"github.com/granaflow/backend/internal/store"
)

// defaultUserID stands in when no identity header is present, for local
// development. Production deployments put an authenticating proxy in front.
const defaultUserID = "local-user"

func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	var nferr *service.CategoryNotFoundError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
	case errors.As(err, &nferr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: nferr.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// writeCount reports a bulk mutation: {"success":true,"<key>":n}.
func writeCount(w http.ResponseWriter, status int, key string, n int) {
	writeJSON(w, status, map[string]any{"success": true, key: n})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.Validationf("invalid request body: %v", err)
	}
	return nil
}

// requireCronSecret guards the scheduler endpoints with a bearer token.
// With no secret configured the endpoints stay open, which is only meant
// for local development.
func (s *Server) requireCronSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.CronSecret != "" {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.CronSecret)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
