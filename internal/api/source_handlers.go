package api

import (
	"net/http"

	"github.com/vytor/lingoflash/internal/models"
)

type addSourceRequest struct {
	models.SourceInfo
	Segments []models.Segment `json:"segments"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.Cards.Sources(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": nonNil(sources)})
}

func (s *Server) handleAddSource(w http.ResponseWriter, r *http.Request) {
	var req addSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.Cards.AddSource(r.Context(), req.SourceInfo, req.Segments)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleSourceSegments(w http.ResponseWriter, r *http.Request) {
	path, err := requireQuery(r, "path")
	if err != nil {
		handleError(w, r, err)
		return
	}
	segments, err := s.Cards.SourceSegments(r.Context(), path)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": segments})
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	path, err := requireQuery(r, "path")
	if err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.Cards.DeleteSource(r.Context(), path)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
