package api

import (
	"net/http"

	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/models"
)

type codeRequest struct {
	Code             string `json:"code"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req codeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.TimeSpentSeconds < 0 {
		handleError(w, r, errors.NewValidationError("time_spent_seconds", "must not be negative"))
		return
	}

	outcome, err := s.SubmissionService.Submit(r.Context(), userIDFromContext(r.Context()), id, req.Code, req.TimeSpentSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleSubmissionRecord(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	userID := userIDFromContext(r.Context())
	rec, err := s.ProgressService.Record(r.Context(), id, userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if rec == nil {
		rec = &models.UserSubmissionRecord{ProblemID: id, UserID: userID, SubmissionHistory: []models.SubmissionEntry{}}
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGradingState(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.SubmissionService.State(r.Context(), userIDFromContext(r.Context()), id))
}

func (s *Server) handleResetGrading(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	ctx := r.Context()
	if err := s.SubmissionService.Reset(ctx, userIDFromContext(ctx), id); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.SubmissionService.State(ctx, userIDFromContext(ctx), id))
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	draft, err := s.DraftService.GetDraft(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// handleSaveDraft stores the editor contents. Saving the starter code
// discards the draft and answers 204.
func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req codeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	draft, err := s.DraftService.SaveDraft(r.Context(), userIDFromContext(r.Context()), id, req.Code, req.TimeSpentSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if draft == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.DraftService.ListDrafts(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}
