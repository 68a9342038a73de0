package api

import (
	"net/http"

	"github.com/vytor/lingoflash/internal/models"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Stats.GetStats(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDetailedStats(w http.ResponseWriter, r *http.Request) {
	detailed, err := s.Stats.GetDetailedStats(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailed)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	if err := s.Stats.ResetStats(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// historyFilter reads card_id, source, since, until and limit.
func historyFilter(r *http.Request) (models.ReviewLogFilter, error) {
	q := r.URL.Query()
	f := models.ReviewLogFilter{
		CardID:    q.Get("card_id"),
		AudioPath: q.Get("source"),
	}
	var err error
	if f.Since, err = queryTime(r, "since"); err != nil {
		return f, err
	}
	if f.Until, err = queryTime(r, "until"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries, err := s.Stats.ReviewHistory(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": nonNil(entries)})
}

func (s *Server) handleResponseBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	counts, err := s.Stats.ResponseBreakdown(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": nonNil(counts)})
}
