package adapthttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"fitlog/internal/app"
	"fitlog/internal/domain"
	"fitlog/internal/view"
)

// maxImportBytes bounds an uploaded backup; media travels inline as data
// URLs so backups can be large.
const maxImportBytes = 64 << 20

// handleExport serves a backup download.
//
//	?scope=all|summary|session|log  (default all)
//	?date=YYYY-MM-DD                (scope=session)
//	?id=ID                          (scope=log)
//	?format=json|text               (default json)
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := view.Format(q.Get("format"))
	if format == "" {
		format = view.FormatJSON
	}
	if format != view.FormatJSON && format != view.FormatText {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown export format %q", format))
		return
	}

	ctx := r.Context()
	userID := s.userID(r)
	today := s.today()

	var (
		dl  *view.Download
		exp *app.Export
		err error
	)
	switch q.Get("scope") {
	case "", "all":
		if exp, err = s.transfer.ExportAll(ctx, userID); err == nil {
			dl, err = view.Render(exp, format, "fitlog-backup-"+today)
		}
	case "summary":
		if exp, err = s.transfer.ExportSummary(ctx, userID); err == nil {
			dl, err = view.Render(exp, format, "fitlog-resumen-"+today)
		}
	case "session":
		var sess *app.Session
		date := q.Get("date")
		sess, err = s.summary.Session(ctx, userID, date, today)
		if err == nil && sess == nil {
			err = fmt.Errorf("session %s: %w", date, app.ErrNotFound)
		}
		if err == nil {
			dl, err = view.RenderSession(*sess, format)
		}
	case "log":
		var l *domain.ExerciseLog
		id := q.Get("id")
		l, err = s.summary.Log(ctx, userID, id)
		if err == nil && l == nil {
			err = fmt.Errorf("exercise log %s: %w", id, app.ErrNotFound)
		}
		if err == nil {
			dl, err = view.RenderLog(*l, format)
		}
	default:
		writeError(w, http.StatusBadRequest, errors.New("scope must be all, summary, session or log"))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	attachment(w, dl.Filename, dl.ContentType, dl.Body)
}

// handleImport replaces the collections present in the uploaded backup.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	res, err := s.transfer.Import(r.Context(), s.userID(r), data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": view.ImportSucceeded, "imported": res})
}
