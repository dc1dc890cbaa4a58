package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/and161185/gratitude-journal/internal/convert"
	"github.com/and161185/gratitude-journal/internal/errs"
)

func entryID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("id must be a positive integer")
	}
	return id, nil
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	list, err := s.entries.List(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	if len(list) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToEntryResponses(list))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	e, err := s.entries.Get(r.Context(), ident.UserID, id)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToEntryResponse(e))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req convert.EntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	in, err := convert.FromEntryRequest(req)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	e, err := s.entries.Create(r.Context(), ident.UserID, in)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToEntryResponse(e))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	var req convert.EntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	in, err := convert.FromEntryRequest(req)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	e, err := s.entries.Update(r.Context(), ident.UserID, id, in)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToEntryResponse(e))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	if err := s.entries.Delete(r.Context(), ident.UserID, id); err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
