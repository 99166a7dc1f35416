package adapthttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fitlog/internal/app"
	"fitlog/internal/domain"
)

func bookParam(r *http.Request) domain.Book {
	return domain.Book(chi.URLParam(r, "book"))
}

func (s *Server) handleLogsList(w http.ResponseWriter, r *http.Request) {
	logs, err := s.summary.Logs(r.Context(), s.userID(r), bookParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": logs})
}

func (s *Server) handleLogRecord(w http.ResponseWriter, r *http.Request) {
	var l domain.ExerciseLog
	if err := parseJSON(r, &l); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	saved, err := s.summary.Record(r.Context(), s.userID(r), bookParam(r), l)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	sessions, err := s.summary.Sessions(r.Context(), s.userID(r), today)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"today": today, "days": domain.Days, "items": sessions})
}

// handleSession returns one session; ?format=text returns its shareable
// plain-text card.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	sess, err := s.summary.Session(r.Context(), s.userID(r), date, s.today())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %s: %w", date, app.ErrNotFound))
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(app.SessionText(*sess)))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !domain.ValidDate(date) {
		writeError(w, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
		return
	}
	n, err := s.summary.RemoveSession(r.Context(), s.userID(r), date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
}

func (s *Server) handleSummaryLogDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.summary.RemoveLog(r.Context(), s.userID(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSummaryMediaDelete(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := s.summary.RemoveMedia(r.Context(), s.userID(r), chi.URLParam(r, "id"), index)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
