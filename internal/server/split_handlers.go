package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/service"
)

func (s *Server) handleCreateSplitEvent(w http.ResponseWriter, r *http.Request) {
	var req service.EventInput
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, err := s.splits.CreateEvent(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleListSplitEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.splits.ListEvents(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetSplitEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.splits.GetEvent(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleUpdateSplitEvent(w http.ResponseWriter, r *http.Request) {
	var req service.EventInput
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, err := s.splits.UpdateEvent(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteSplitEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.splits.DeleteEvent(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetSplitEventStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, err := s.splits.SetStatus(r.Context(), userID(r), chi.URLParam(r, "id"), model.EventStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleAddReceipt(w http.ResponseWriter, r *http.Request) {
	var req service.ReceiptInput
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, err := s.splits.AddReceipt(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleRemoveReceipt(w http.ResponseWriter, r *http.Request) {
	event, err := s.splits.RemoveReceipt(r.Context(), userID(r), chi.URLParam(r, "id"), chi.URLParam(r, "receiptId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCalculateSplit(w http.ResponseWriter, r *http.Request) {
	summary, err := s.splits.Calculate(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
