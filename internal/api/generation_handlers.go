package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/codedrill/internal/models"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var opts models.GenerationOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		handleError(w, r, err)
		return
	}

	job, err := s.GenerationService.Enqueue(r.Context(), userIDFromContext(r.Context()), opts)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/generate/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGenerationJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.GenerationService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	job.Problems = publicProblems(job.Problems)
	writeJSON(w, http.StatusOK, job)
}
