package httpserver

import (
	"net/http"

	"github.com/and161185/gratitude-journal/internal/convert"
	"github.com/and161185/gratitude-journal/internal/model"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	u, err := s.auth.Me(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUserResponse(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req convert.ProfileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	u, err := s.auth.UpdateProfile(r.Context(), id.UserID, model.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
	})
	if err != nil {
		s.writeError(w, r, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, convert.ProfileUpdateResponse{
		Message: "profile updated",
		User:    convert.ToUserResponse(u),
	})
}
