package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(s.RequestTimeout))
		r.Use(s.authMiddleware)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.With(requireSession).Get("/auth/me", s.handleMe)

		r.Get("/categories", s.handleCategories)

		r.Get("/problems", s.handleListProblems)
		r.Post("/problems/refresh", s.handleRefreshProblems)
		r.Route("/problems/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetProblem)
			r.Patch("/", s.handleUpdateProblem)
			r.Post("/bookmark", s.handleToggleBookmark)
			r.Post("/submissions", s.handleSubmit)
			r.Get("/submissions", s.handleSubmissionRecord)
			r.Get("/grading", s.handleGradingState)
			r.Delete("/grading", s.handleResetGrading)
			r.Get("/draft", s.handleGetDraft)
			r.Put("/draft", s.handleSaveDraft)
		})

		r.Get("/bookmarks", s.handleBookmarks)
		r.Get("/drafts", s.handleListDrafts)

		r.Get("/me/stats", s.handleStats)
		r.Get("/me/wrong-problems", s.handleWrongProblems)
		r.Get("/me/preferences", s.handleGetPreferences)
		r.Put("/me/preferences", s.handleSavePreferences)

		r.Post("/generate", s.handleGenerate)
		r.Get("/generate/{id}", s.handleGenerationJob)
	})

	return r
}
