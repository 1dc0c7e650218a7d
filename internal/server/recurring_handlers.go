package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/service"
)

type recurringRequest struct {
	Description    string     `json:"description"`
	Amount         float64    `json:"amount"`
	CategoryID     string     `json:"categoryId"`
	SubcategoryID  string     `json:"subcategoryId"`
	MerchantName   string     `json:"merchantName"`
	Tags           []string   `json:"tags"`
	Frequency      string     `json:"frequency"`
	DayOfMonth     *int       `json:"dayOfMonth"`
	DayOfWeek      *int       `json:"dayOfWeek"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	ForecastMonths int        `json:"forecastMonths"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tmpl, err := s.recurring.Create(r.Context(), userID(r), service.RecurringInput{
		Description:    req.Description,
		Amount:         req.Amount,
		CategoryID:     req.CategoryID,
		SubcategoryID:  req.SubcategoryID,
		MerchantName:   req.MerchantName,
		Tags:           req.Tags,
		Frequency:      model.Frequency(req.Frequency),
		DayOfMonth:     req.DayOfMonth,
		DayOfWeek:      req.DayOfWeek,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		ForecastMonths: req.ForecastMonths,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	templates, err := s.recurring.ListDetailed(r.Context(), userID(r), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.recurring.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var req service.RecurringUpdate
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tmpl, err := s.recurring.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleStopRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.recurring.Stop(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.recurring.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
