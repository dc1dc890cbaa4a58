package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/gratitude-journal/internal/convert"
	"github.com/and161185/gratitude-journal/internal/errs"
)

// Client-facing messages.
const (
	msgInternal       = "internal error"
	msgInvalidToken   = "token is invalid or expired"
	msgBadSubject     = "token subject is invalid"
	msgSignInAgain    = "please sign in again"
	msgAuthRequired   = "authentication required"
	msgBadCredentials = "invalid username or password"
	msgNotFound       = "not found"
	msgBadBody        = "malformed request body"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, convert.ErrorResponse{Error: msg})
}

// errorStatus maps a service error to a status and a client message.
// notFound is the status used for errs.ErrNotFound, which differs per route.
func errorStatus(err error, notFound int) (int, string) {
	switch {
	case errors.Is(err, errs.ErrUsernameTaken):
		return http.StatusBadRequest, "username is already taken"
	case errors.Is(err, errs.ErrEmailTaken):
		return http.StatusBadRequest, "email is already in use"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusBadRequest, "already exists"
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrNotFound):
		if notFound == http.StatusUnauthorized {
			return notFound, msgSignInAgain
		}
		return notFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError is the single place where service errors become responses.
// Causes of 500s are logged, never returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound int) {
	status, msg := errorStatus(err, notFound)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSONError(w, status, msg)
}

// decodeJSON reads a JSON body of at most 1 MiB into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return errs.Validation(msgBadBody)
	}
	return nil
}
