package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 2 * time.Minute

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/due", s.handleDue)
		r.Post("/focus", s.handleFocus)

		r.Route("/cards/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCard)
			r.Patch("/", s.handleEditCard)
			r.Delete("/", s.handleDeleteCard)
			r.Post("/review", s.handleReview)
			r.Post("/skip", s.handleSkip)
			r.Get("/analysis", s.handleCardAnalysis)
		})

		r.Get("/sources", s.handleSources)
		r.Post("/sources", s.handleAddSource)
		r.Delete("/sources", s.handleDeleteSource)
		r.Get("/sources/segments", s.handleSourceSegments)

		r.Get("/stats", s.handleStats)
		r.Get("/stats/detailed", s.handleDetailedStats)
		r.Post("/stats/reset", s.handleResetStats)
		r.Get("/history", s.handleHistory)
		r.Get("/history/responses", s.handleResponseBreakdown)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)

		r.Get("/limit", s.handleDailyLimit)
		r.Post("/limit/continue", s.handleContinueLimit)
		r.Post("/session/start", s.handleStartSession)
		r.Post("/session/end", s.handleEndSession)

		r.Post("/analysis", s.handleAnalyze)

		r.Post("/imports", s.handleImport)
		r.Get("/jobs", s.handleJobs)
		r.Get("/jobs/{id}", s.handleJob)
		r.Delete("/jobs/{id}", s.handleCancelJob)
	})
	return r
}
