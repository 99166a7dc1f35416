package adapthttp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fitlog/internal/app"
)

func (s *Server) handleNotesList(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.List(r.Context(), s.userID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": notes})
}

func (s *Server) handleNoteAdd(w http.ResponseWriter, r *http.Request) {
	var form app.NoteForm
	if err := parseJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := s.notes.Add(r.Context(), s.userID(r), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleNoteUpdate(w http.ResponseWriter, r *http.Request) {
	var form app.NoteForm
	if err := parseJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := s.notes.Update(r.Context(), s.userID(r), chi.URLParam(r, "id"), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleNoteDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Remove(r.Context(), s.userID(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleNoteMediaDelete(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := s.notes.RemoveMedia(r.Context(), s.userID(r), chi.URLParam(r, "id"), index)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleNoteLinkAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := s.notes.AddVideoLink(r.Context(), s.userID(r), chi.URLParam(r, "id"), body.URL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleNoteLinkRename(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := s.notes.RenameVideoLink(r.Context(), s.userID(r), chi.URLParam(r, "id"), chi.URLParam(r, "linkID"), body.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleNoteLinkDelete(w http.ResponseWriter, r *http.Request) {
	n, err := s.notes.RemoveVideoLink(r.Context(), s.userID(r), chi.URLParam(r, "id"), chi.URLParam(r, "linkID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func indexParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, errors.New("media index must be an integer")
	}
	return n, nil
}
