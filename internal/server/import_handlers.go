package server

import (
	"net/http"
)

type importPreviewRequest struct {
	FileContent string `json:"fileContent"`
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	var req importPreviewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	statement, matches, err := s.imports.Preview(r.Context(), req.FileContent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statement": statement,
		"matches":   matches,
	})
}

type importCommitRequest struct {
	FileContent    string `json:"fileContent"`
	StatementMonth int    `json:"statementMonth"`
	StatementYear  int    `json:"statementYear"`
}

func (s *Server) handleImportCommit(w http.ResponseWriter, r *http.Request) {
	var req importCommitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	count, err := s.imports.Import(r.Context(), userID(r), req.FileContent, req.StatementMonth, req.StatementYear)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCount(w, http.StatusCreated, "imported", count)
}
