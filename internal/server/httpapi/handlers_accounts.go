package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flixflex/flixflex/internal/server/accounts"
	"github.com/flixflex/flixflex/internal/server/sessions"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the token payload shared by sign-up, sign-in and
// refresh.
type sessionResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func writeSession(w http.ResponseWriter, status int, sess *sessions.Session) {
	writeJSON(w, status, sessionResponse{
		UID:          sess.Account.ID,
		Email:        sess.Account.Email,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
	})
}

// handleSignUp creates an account and signs it in, so the client gets a
// usable session from a single request.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	account, err := s.accounts.SignUp(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, accounts.ErrEmailTaken):
		writeError(w, http.StatusConflict, codeEmailTaken, "email already in use")
		return
	case errors.Is(err, accounts.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, codeWeakPassword, "password too weak")
		return
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, codeBadRequest, "email is required")
		return
	case err != nil:
		s.log.Error(r.Context(), "sign-up failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	sess, err := s.sessions.IssueFor(r.Context(), account)
	if err != nil {
		s.log.Error(r.Context(), "token issuance failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	writeSession(w, http.StatusCreated, sess)
}

// handleDeleteAccount removes the account named in the path. The token must
// belong to that same account.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	claims := claimsFrom(r.Context())
	if claims == nil || claims.UserID != uid {
		writeError(w, http.StatusForbidden, codeUnauthenticated, "token does not match account")
		return
	}

	if err := s.accounts.Delete(r.Context(), uid); err != nil {
		s.log.Error(r.Context(), "account deletion failed", "uid", uid, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "email is required")
		return
	}

	if err := s.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.log.Error(r.Context(), "password reset request failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	// always accepted, whether or not the email has an account
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "token is required")
		return
	}

	err := s.accounts.ConsumePasswordReset(r.Context(), req.Token, req.NewPassword)
	switch {
	case errors.Is(err, accounts.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, codeWeakPassword, "password too weak")
	case errors.Is(err, accounts.ErrNotFound):
		writeError(w, http.StatusBadRequest, codeInvalidToken, "invalid or expired reset token")
	case err != nil:
		s.log.Error(r.Context(), "password reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
