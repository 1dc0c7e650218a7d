package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/granaflow/backend/internal/model"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat model.Category
	if err := decode(r, &cat); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.categories.Create(r.Context(), &cat)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var cat model.Category
	if err := decode(r, &cat); err != nil {
		writeError(w, err)
		return
	}
	cat.ID = chi.URLParam(r, "id")
	updated, err := s.categories.Update(r.Context(), &cat)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
