package view

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fitlog/internal/app"
	"fitlog/internal/domain"
)

// SummaryStore is what the summary page needs from the application layer.
type SummaryStore interface {
	Sessions(ctx context.Context, userID int64, today string) ([]app.Session, error)
	RemoveLog(ctx context.Context, userID int64, id string) error
	RemoveSession(ctx context.Context, userID int64, date string) (int, error)
	RemoveMedia(ctx context.Context, userID int64, id string, index int) (*domain.ExerciseLog, error)
}

// Transfer produces and consumes backups.
type Transfer interface {
	ExportAll(ctx context.Context, userID int64) (*app.Export, error)
	ExportSummary(ctx context.Context, userID int64) (*app.Export, error)
	Import(ctx context.Context, userID int64, data []byte) (*app.ImportResult, error)
}

// DeletionKind says what a summary delete request targets.
type DeletionKind string

const (
	DeleteExercise DeletionKind = "exercise"
	DeleteMedia    DeletionKind = "media"
	DeleteSession  DeletionKind = "session"
)

// DeletionTarget is the record awaiting confirmation. ID is the log ID, or
// the session date for DeleteSession.
type DeletionTarget struct {
	Kind       DeletionKind
	ID         string
	MediaIndex int
	Name       string
}

// ExportScope selects what an export covers.
type ExportScope struct {
	Title string
	All   bool
	// Session, when set, restricts the export to one session's logs.
	Session *app.Session
	// Log, when set, exports a single exercise.
	Log *domain.ExerciseLog
}

// Format is a download rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Download is a file ready to be handed to the user.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Import messages shown to the user.
const (
	ImportSucceeded   = "¡Datos importados con éxito!"
	importFailedTitle = "Error al importar: "
)

// SummaryController drives the summary page: delete confirmations, the
// lightbox, the export format choice, import feedback and the collapse
// state of day and exercise groups.
type SummaryController struct {
	store    SummaryStore
	transfer Transfer
	userID   int64

	deletion  Confirm[DeletionTarget]
	export    Confirm[ExportScope]
	lightbox  Lightbox
	card      *domain.ExerciseLog
	alert     string
	collapsed map[string]bool
}

// NewSummaryController creates a controller for userID.
func NewSummaryController(store SummaryStore, transfer Transfer, userID int64) *SummaryController {
	return &SummaryController{store: store, transfer: transfer, userID: userID, collapsed: make(map[string]bool)}
}

// Sessions lists the sessions to render.
func (c *SummaryController) Sessions(ctx context.Context, today string) ([]app.Session, error) {
	return c.store.Sessions(ctx, c.userID, today)
}

// RequestDelete asks for confirmation of t.
func (c *SummaryController) RequestDelete(t DeletionTarget) { c.deletion.Request(t) }

// PendingDelete returns the target awaiting confirmation.
func (c *SummaryController) PendingDelete() (DeletionTarget, bool) { return c.deletion.Pending() }

// CancelDelete discards the request.
func (c *SummaryController) CancelDelete() { c.deletion.Cancel() }

// ConfirmDelete performs the pending deletion. Deleting media also closes
// the lightbox.
func (c *SummaryController) ConfirmDelete(ctx context.Context) error {
	t, ok := c.deletion.Take()
	if !ok {
		return nil
	}
	switch t.Kind {
	case DeleteExercise:
		return c.store.RemoveLog(ctx, c.userID, t.ID)
	case DeleteMedia:
		c.lightbox = c.lightbox.Close()
		_, err := c.store.RemoveMedia(ctx, c.userID, t.ID, t.MediaIndex)
		return err
	case DeleteSession:
		_, err := c.store.RemoveSession(ctx, c.userID, t.ID)
		return err
	default:
		return fmt.Errorf("unknown deletion kind %q", t.Kind)
	}
}

// OpenLightbox shows a log's attachments.
func (c *SummaryController) OpenLightbox(l domain.ExerciseLog, index int) {
	c.lightbox = OpenLightbox(l.ID, l.Media, index)
}

// Lightbox returns the viewer state.
func (c *SummaryController) Lightbox() Lightbox { return c.lightbox }

// NextMedia and PrevMedia move through the viewer.
func (c *SummaryController) NextMedia() { c.lightbox = c.lightbox.Next() }

func (c *SummaryController) PrevMedia() { c.lightbox = c.lightbox.Prev() }

// CloseLightbox hides the viewer.
func (c *SummaryController) CloseLightbox() { c.lightbox = c.lightbox.Close() }

// RequestMediaDelete asks to delete the attachment on screen.
func (c *SummaryController) RequestMediaDelete() bool {
	t, ok := c.lightbox.DeleteTarget()
	if ok {
		c.deletion.Request(DeletionTarget{Kind: DeleteMedia, ID: t.OwnerID, MediaIndex: t.Index, Name: "este archivo"})
	}
	return ok
}

// ShowCard opens the shareable card of a log; CloseCard hides it.
func (c *SummaryController) ShowCard(l domain.ExerciseLog) { c.card = &l }

func (c *SummaryController) CloseCard() { c.card = nil }

// Card returns the log on the shareable card.
func (c *SummaryController) Card() (domain.ExerciseLog, bool) {
	if c.card == nil {
		return domain.ExerciseLog{}, false
	}
	return *c.card, true
}

// RequestExport opens the format choice for scope.
func (c *SummaryController) RequestExport(scope ExportScope) { c.export.Request(scope) }

// PendingExport returns the scope awaiting a format.
func (c *SummaryController) PendingExport() (ExportScope, bool) { return c.export.Pending() }

// CancelExport closes the format choice.
func (c *SummaryController) CancelExport() { c.export.Cancel() }

// ChooseFormat renders the pending export.
func (c *SummaryController) ChooseFormat(ctx context.Context, f Format, today string) (*Download, error) {
	scope, ok := c.export.Take()
	if !ok {
		return nil, fmt.Errorf("choose export format: %w", ErrInvalidTransition)
	}
	if f != FormatJSON && f != FormatText {
		return nil, fmt.Errorf("unknown export format %q", f)
	}

	switch {
	case scope.Log != nil:
		return RenderLog(*scope.Log, f)
	case scope.Session != nil:
		return RenderSession(*scope.Session, f)
	}

	var (
		exp  *app.Export
		err  error
		name string
	)
	if scope.All {
		exp, err = c.transfer.ExportAll(ctx, c.userID)
		name = "fitlog-backup-" + today
	} else {
		exp, err = c.transfer.ExportSummary(ctx, c.userID)
		name = "fitlog-resumen-" + today
	}
	if err != nil {
		return nil, err
	}
	return Render(exp, f, name)
}

// RenderSession exports one session as a {"summaryLogs": [...]} document or
// its plain-text card.
func RenderSession(s app.Session, f Format) (*Download, error) {
	if f == FormatText {
		return textDownload("sesion-"+s.Date, app.SessionText(s)), nil
	}
	return logsDownload("sesion-"+s.Date, s.Logs)
}

// RenderLog exports one exercise the same way, named after the exercise and
// its date.
func RenderLog(l domain.ExerciseLog, f Format) (*Download, error) {
	name := "ejercicio-" + strings.Join(strings.Fields(strings.ReplaceAll(l.ExerciseName, "/", " ")), "-") + "-" + l.Date
	if f == FormatText {
		return textDownload(name, app.LogText(l)), nil
	}
	return logsDownload(name, []domain.ExerciseLog{l})
}

func textDownload(base, body string) *Download {
	return &Download{Filename: base + ".txt", ContentType: "text/plain; charset=utf-8", Body: []byte(body)}
}

func logsDownload(base string, logs []domain.ExerciseLog) (*Download, error) {
	body, err := json.MarshalIndent(struct {
		SummaryLogs []domain.ExerciseLog `json:"summaryLogs"`
	}{logs}, "", "  ")
	if err != nil {
		return nil, err
	}
	return &Download{Filename: base + ".json", ContentType: "application/json", Body: body}, nil
}

// Render turns an export into a download named base plus the format's
// extension.
func Render(exp *app.Export, f Format, base string) (*Download, error) {
	if f == FormatText {
		return textDownload(base, exp.Text()), nil
	}
	var buf bytes.Buffer
	if err := exp.WriteJSON(&buf); err != nil {
		return nil, err
	}
	return &Download{Filename: base + ".json", ContentType: "application/json", Body: buf.Bytes()}, nil
}

// Import loads a backup and records the message to show. The store's error
// text is shown as is.
func (c *SummaryController) Import(ctx context.Context, data []byte) (*app.ImportResult, error) {
	res, err := c.transfer.Import(ctx, c.userID, data)
	if err != nil {
		c.alert = importFailedTitle + err.Error()
		return nil, err
	}
	c.alert = ImportSucceeded
	return res, nil
}

// Alert returns the pending message; DismissAlert clears it.
func (c *SummaryController) Alert() string { return c.alert }

func (c *SummaryController) DismissAlert() { c.alert = "" }

// ToggleDay collapses or expands a day group. Keys come from
// app.DayGroup.Key.
func (c *SummaryController) ToggleDay(key string) { c.toggle("day:" + key) }

// ToggleExercise collapses or expands an exercise group within a day.
func (c *SummaryController) ToggleExercise(dayKey, name string) {
	c.toggle("ex:" + dayKey + "-" + name)
}

// DayCollapsed reports the state of a day group; groups start expanded.
func (c *SummaryController) DayCollapsed(key string) bool { return c.collapsed["day:"+key] }

// ExerciseCollapsed reports the state of an exercise group.
func (c *SummaryController) ExerciseCollapsed(dayKey, name string) bool {
	return c.collapsed["ex:"+dayKey+"-"+name]
}

func (c *SummaryController) toggle(k string) {
	if c.collapsed[k] {
		delete(c.collapsed, k)
		return
	}
	c.collapsed[k] = true
}
