package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flixflex/flixflex/internal/server/accounts"
	"github.com/flixflex/flixflex/internal/server/sessions"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.SignIn(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid email or password")
		return
	case err != nil:
		s.log.Error(r.Context(), "sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "refresh_token is required")
		return
	}

	sess, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, sessions.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, codeInvalidToken, "invalid or expired refresh token")
		return
	case err != nil:
		s.log.Error(r.Context(), "refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "refresh_token is required")
		return
	}

	if err := s.sessions.SignOut(r.Context(), req.RefreshToken); err != nil {
		s.log.Error(r.Context(), "sign-out failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
