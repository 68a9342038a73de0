package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lingoflash/internal/models"
)

type analyzeRequest struct {
	Text             string `json:"text"`
	LearningLanguage string `json:"learning_language"`
	NativeLanguage   string `json:"native_language"`
	Regenerate       bool   `json:"regenerate"`
	// Background queues the analysis and returns the job id.
	Background bool `json:"background"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, key models.AnalysisKey, regenerate bool) {
	var (
		result models.Analysis
		err    error
	)
	if regenerate {
		result, err = s.Analysis.Regenerate(r.Context(), key)
	} else {
		result, err = s.Analysis.Get(r.Context(), key)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCardAnalysis(w http.ResponseWriter, r *http.Request) {
	key, err := s.Analysis.KeyForCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.analyze(w, r, key, queryBool(r, "regenerate"))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	key := models.AnalysisKey{
		Text:             req.Text,
		LearningLanguage: req.LearningLanguage,
		NativeLanguage:   req.NativeLanguage,
	}
	if req.Background {
		id, err := s.Imports.PrefetchAnalysis(r.Context(), key)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
		return
	}
	s.analyze(w, r, key, req.Regenerate)
}
