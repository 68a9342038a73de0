package api

import "net/http"

func (s *Server) handleDailyLimit(w http.ResponseWriter, r *http.Request) {
	limit, err := s.Reviews.CheckDailyLimit(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, limit)
}

func (s *Server) handleContinueLimit(w http.ResponseWriter, r *http.Request) {
	limit, err := s.Reviews.ContinueBeyondLimit(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, limit)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Reviews.StartSession(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	elapsed, err := s.Reviews.EndSession(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"elapsed_seconds": elapsed})
}
