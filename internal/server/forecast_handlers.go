package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/service"
)

func (s *Server) handleUpcomingForecasts(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, service.Validationf("invalid days parameter %q", raw))
			return
		}
		days = parsed
	}
	forecasts, err := s.forecasts.Upcoming(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecasts)
}

func (s *Server) handleListTemplateForecasts(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")
	if _, err := s.recurring.Get(r.Context(), userID(r), templateID); err != nil {
		writeError(w, err)
		return
	}
	forecasts, err := s.forecasts.ForTemplate(r.Context(), templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecasts)
}

func (s *Server) handleUpdateForecast(w http.ResponseWriter, r *http.Request) {
	var patch model.ExpensePatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.forecasts.UpdateOccurrence(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type updateAllFutureRequest struct {
	From  time.Time          `json:"from"`
	Patch model.ExpensePatch `json:"patch"`
}

func (s *Server) handleUpdateAllFutureForecasts(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")
	if _, err := s.recurring.Get(r.Context(), userID(r), templateID); err != nil {
		writeError(w, err)
		return
	}
	var req updateAllFutureRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.forecasts.UpdateAllFuture(r.Context(), templateID, req.From, req.Patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCount(w, http.StatusOK, "updated", updated)
}

func (s *Server) handleConfirmForecast(w http.ResponseWriter, r *http.Request) {
	if err := s.forecasts.Confirm(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type bulkIDsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBulkConfirmForecasts(w http.ResponseWriter, r *http.Request) {
	var req bulkIDsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	confirmed, err := s.forecasts.BulkConfirm(r.Context(), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCount(w, http.StatusOK, "confirmed", confirmed)
}

func (s *Server) handleBulkDeleteForecasts(w http.ResponseWriter, r *http.Request) {
	var req bulkIDsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	deleted, err := s.forecasts.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCount(w, http.StatusOK, "deleted", deleted)
}

type checkMatchesRequest struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

func (s *Server) handleCheckMatches(w http.ResponseWriter, r *http.Request) {
	var req checkMatchesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	candidates, err := s.reconcile.FindMatches(r.Context(), req.Date, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

type mergeRequest struct {
	ForecastID  string                      `json:"forecastId"`
	Transaction service.ImportedTransaction `json:"transaction"`
}

func (s *Server) handleConfirmMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	merged, err := s.reconcile.ConfirmMerge(r.Context(), req.ForecastID, req.Transaction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

func (s *Server) handleCronExtend(w http.ResponseWriter, r *http.Request) {
	results, err := s.jobs.ExtendWindow(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	created, failed := 0, 0
	for _, res := range results {
		created += res.Created
		if res.Err != nil {
			failed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"templates": len(results),
		"created":   created,
		"failed":    failed,
	})
}

func (s *Server) handleCronMature(w http.ResponseWriter, r *http.Request) {
	matured, err := s.jobs.Mature(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCount(w, http.StatusOK, "matured", matured)
}
