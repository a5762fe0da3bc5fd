package api

import (
	"net/http"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/services"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.AuthService.Login(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s.setSessionCookie(w, res.Token, res.Session)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess != nil {
		if err := s.AuthService.Logout(r.Context(), sess.ID); err != nil {
			handleError(w, r, err)
			return
		}
	} else {
		logger.FromContext(r.Context()).Debug("logout without a session")
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user": models.User{
			ID:        sess.UserID,
			Email:     sess.Email,
			StudentID: sess.StudentID,
		},
		"session": sess,
	})
}
