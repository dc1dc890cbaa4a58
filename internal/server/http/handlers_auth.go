package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/gratitude-journal/internal/convert"
	"github.com/and161185/gratitude-journal/internal/errs"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req convert.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	sess, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	s.setRefreshCookie(w, sess.Tokens.RefreshToken)
	writeJSON(w, http.StatusOK, convert.ToAuthResponse(sess))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req convert.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	sess, err := s.auth.SignIn(r.Context(), req.Username, req.Password)
	if errors.Is(err, errs.ErrUnauthorized) {
		writeJSONError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	s.setRefreshCookie(w, sess.Tokens.RefreshToken)
	writeJSON(w, http.StatusOK, convert.ToAuthResponse(sess))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tok, err := s.auth.Refresh(r.Context(), refreshCookie(r))
	if err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, convert.AccessTokenResponse{AccessToken: tok.AccessToken})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleValidate reports token liveness without blocking: the outcome is
// in the status code and the body.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	v, err := s.auth.Validate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		status, msg := errorStatus(err, http.StatusNotFound)
		switch status {
		case http.StatusNotFound:
			msg = "user not found"
		case http.StatusInternalServerError:
			s.log.Error("validate failed", zap.Error(err))
		}
		writeJSON(w, status, convert.ValidationResponse{Valid: false, Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, convert.ValidationResponse{Valid: true, UserID: v.UserID, Username: v.Username})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req convert.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	if err := s.auth.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := s.auth.DeleteAccount(r.Context(), id.UserID); err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
