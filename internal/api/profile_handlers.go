package api

import (
	"net/http"

	"github.com/vytor/codedrill/internal/models"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.ProfileService.Stats(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleWrongProblems(w http.ResponseWriter, r *http.Request) {
	wrong, err := s.ProfileService.WrongProblems(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if wrong == nil {
		wrong = []models.WrongProblem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"problems": wrong})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.ProfileService.Preferences(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := decodeJSON(w, r, &prefs); err != nil {
		handleError(w, r, err)
		return
	}
	// The owner always comes from the session, never the body.
	prefs.UserID = userIDFromContext(r.Context())

	saved, err := s.ProfileService.SavePreferences(r.Context(), prefs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
