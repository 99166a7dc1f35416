package view

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fitlog/internal/app"
	"fitlog/internal/domain"
)

// NoteStore is what the notes page needs from the application layer.
type NoteStore interface {
	List(ctx context.Context, userID int64) ([]domain.Note, error)
	Add(ctx context.Context, userID int64, form app.NoteForm) (*domain.Note, error)
	Update(ctx context.Context, userID int64, id string, form app.NoteForm) (*domain.Note, error)
	Remove(ctx context.Context, userID int64, id string) error
	RemoveMedia(ctx context.Context, userID int64, id string, index int) (*domain.Note, error)
	RemoveVideoLink(ctx context.Context, userID int64, id, linkID string) (*domain.Note, error)
	RenameVideoLink(ctx context.Context, userID int64, id, linkID, name string) (*domain.Note, error)
}

// Clipboard reads the system clipboard. Reads may be refused by the host.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
}

// FileReader turns a picked file into a data URL.
type FileReader interface {
	ReadDataURL(ctx context.Context) (dataURL, mimeType string, err error)
}

// LinkRef points at one video link of one note.
type LinkRef struct {
	NoteID string
	LinkID string
	Name   string
}

// NoteController drives the notes page: the add/edit modal, attachments,
// link pasting, link rename and delete, note delete and the lightbox.
// It is safe for concurrent use because file reads complete on their own
// goroutine.
type NoteController struct {
	store     NoteStore
	clipboard Clipboard
	log       *zap.Logger
	userID    int64

	mu         sync.Mutex
	modalOpen  bool
	editingID  string
	form       app.NoteForm
	generation int
	noteDelete Confirm[string]
	linkDelete Confirm[LinkRef]
	renaming   *LinkRef
	lightbox   Lightbox
	playing    string
}

// NewNoteController creates a controller for userID. A nil logger is
// replaced with a no-op one.
func NewNoteController(store NoteStore, clipboard Clipboard, log *zap.Logger, userID int64) *NoteController {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoteController{store: store, clipboard: clipboard, log: log, userID: userID}
}

// Notes lists the notes to render.
func (c *NoteController) Notes(ctx context.Context) ([]domain.Note, error) {
	return c.store.List(ctx, c.userID)
}

// ModalOpen reports whether the add/edit modal is showing and which note it
// edits; an empty ID means a new note.
func (c *NoteController) ModalOpen() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modalOpen, c.editingID
}

// Form returns a copy of the modal's form.
func (c *NoteController) Form() app.NoteForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.form
	f.Media = slices.Clone(f.Media)
	f.VideoLinks = slices.Clone(f.VideoLinks)
	return f
}

// OpenNew opens the modal on an empty note.
func (c *NoteController) OpenNew() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open("", app.NoteForm{})
}

// OpenEdit opens the modal on a copy of n.
func (c *NoteController) OpenEdit(n domain.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open(n.ID, app.NoteForm{
		Title:      n.Title,
		Content:    n.Content,
		Media:      slices.Clone(n.Media),
		VideoLinks: slices.Clone(n.VideoLinks),
	})
}

func (c *NoteController) open(id string, form app.NoteForm) {
	c.modalOpen = true
	c.editingID = id
	c.form = form
	c.generation++
}

// Close discards the modal.
func (c *NoteController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeModal()
}

func (c *NoteController) closeModal() {
	c.modalOpen = false
	c.editingID = ""
	c.form = app.NoteForm{}
	c.generation++
}

// SetTitle edits the title in the modal.
func (c *NoteController) SetTitle(s string) error {
	return c.edit(func(f *app.NoteForm) { f.Title = s })
}

// SetContent edits the body in the modal.
func (c *NoteController) SetContent(s string) error {
	return c.edit(func(f *app.NoteForm) { f.Content = s })
}

// RemoveFormMedia drops an attachment from the modal before saving.
func (c *NoteController) RemoveFormMedia(index int) error {
	return c.edit(func(f *app.NoteForm) {
		if index >= 0 && index < len(f.Media) {
			f.Media = slices.Delete(f.Media, index, index+1)
		}
	})
}

// RemoveFormLink drops a link from the modal before saving.
func (c *NoteController) RemoveFormLink(linkID string) error {
	return c.edit(func(f *app.NoteForm) {
		f.VideoLinks = slices.DeleteFunc(f.VideoLinks, func(l domain.LinkItem) bool { return l.ID == linkID })
	})
}

func (c *NoteController) edit(fn func(*app.NoteForm)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modalOpen {
		return fmt.Errorf("edit note form: %w", ErrInvalidTransition)
	}
	fn(&c.form)
	return nil
}

// AddMedia appends an attachment to the modal.
func (c *NoteController) AddMedia(mimeType, dataURL string) error {
	return c.edit(func(f *app.NoteForm) {
		f.Media = append(f.Media, domain.Media{Type: domain.MediaTypeFor(mimeType), DataURL: dataURL})
	})
}

// AttachFile reads a file in the background and appends it to the modal
// when done. The result is dropped if the modal was closed or reopened in
// the meantime. The returned channel yields the read error, if any, and is
// then closed.
func (c *NoteController) AttachFile(ctx context.Context, r FileReader) <-chan error {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		dataURL, mimeType, err := r.ReadDataURL(ctx)
		if err != nil {
			done <- err
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.modalOpen || c.generation != gen {
			return
		}
		c.form.Media = append(c.form.Media, domain.Media{Type: domain.MediaTypeFor(mimeType), DataURL: dataURL})
	}()
	return done
}

// PasteLink adds the clipboard text as a video link of the modal. Clipboard
// failures are logged and otherwise ignored, as are blank or repeated URLs.
func (c *NoteController) PasteLink(ctx context.Context) {
	text, err := c.clipboard.ReadText(ctx)
	if err != nil {
		c.log.Warn("failed to read clipboard contents", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modalOpen {
		return
	}
	if links, added := app.AppendVideoLink(c.form.VideoLinks, text); added {
		c.form.VideoLinks = links
	}
}

// Save creates or updates the note and closes the modal. On failure the
// modal stays open.
func (c *NoteController) Save(ctx context.Context) (*domain.Note, error) {
	c.mu.Lock()
	if !c.modalOpen {
		c.mu.Unlock()
		return nil, fmt.Errorf("save note: %w", ErrInvalidTransition)
	}
	id, form := c.editingID, c.form
	c.mu.Unlock()

	var (
		n   *domain.Note
		err error
	)
	if id == "" {
		n, err = c.store.Add(ctx, c.userID, form)
	} else {
		n, err = c.store.Update(ctx, c.userID, id, form)
	}
	if err != nil {
		return nil, err
	}
	c.Close()
	return n, nil
}

// RequestDelete asks for confirmation before removing a note.
func (c *NoteController) RequestDelete(noteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteDelete.Request(noteID)
}

// PendingDelete returns the note awaiting confirmation.
func (c *NoteController) PendingDelete() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noteDelete.Pending()
}

// CancelDelete keeps the note.
func (c *NoteController) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteDelete.Cancel()
}

// ConfirmDelete removes the pending note.
func (c *NoteController) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id, ok := c.noteDelete.Take()
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.store.Remove(ctx, c.userID, id)
}

// StartRename begins renaming a saved link.
func (c *NoteController) StartRename(noteID string, l domain.LinkItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renaming = &LinkRef{NoteID: noteID, LinkID: l.ID, Name: l.Name}
}

// Renaming returns the link being renamed with the text typed so far.
func (c *NoteController) Renaming() (LinkRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.renaming == nil {
		return LinkRef{}, false
	}
	return *c.renaming, true
}

// SetRenameText updates the name being typed.
func (c *NoteController) SetRenameText(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.renaming != nil {
		c.renaming.Name = name
	}
}

// CancelRename keeps the old name.
func (c *NoteController) CancelRename() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renaming = nil
}

// SaveRename stores the new name. A blank name cancels the rename.
func (c *NoteController) SaveRename(ctx context.Context) error {
	c.mu.Lock()
	r := c.renaming
	c.renaming = nil
	c.mu.Unlock()
	if r == nil || strings.TrimSpace(r.Name) == "" {
		return nil
	}
	_, err := c.store.RenameVideoLink(ctx, c.userID, r.NoteID, r.LinkID, strings.TrimSpace(r.Name))
	return err
}

// RequestLinkDelete asks for confirmation before removing a saved link.
func (c *NoteController) RequestLinkDelete(noteID string, l domain.LinkItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linkDelete.Request(LinkRef{NoteID: noteID, LinkID: l.ID, Name: l.Name})
}

// PendingLinkDelete returns the link awaiting confirmation.
func (c *NoteController) PendingLinkDelete() (LinkRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.linkDelete.Pending()
}

// CancelLinkDelete keeps the link.
func (c *NoteController) CancelLinkDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linkDelete.Cancel()
}

// ConfirmLinkDelete removes the pending link.
func (c *NoteController) ConfirmLinkDelete(ctx context.Context) error {
	c.mu.Lock()
	r, ok := c.linkDelete.Take()
	c.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := c.store.RemoveVideoLink(ctx, c.userID, r.NoteID, r.LinkID)
	return err
}

// OpenLightbox shows a note's attachments starting at index.
func (c *NoteController) OpenLightbox(n domain.Note, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lightbox = OpenLightbox(n.ID, n.Media, index)
}

// Lightbox returns the viewer state.
func (c *NoteController) Lightbox() Lightbox {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lightbox
}

// NextMedia and PrevMedia move through the viewer.
func (c *NoteController) NextMedia() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lightbox = c.lightbox.Next()
}

func (c *NoteController) PrevMedia() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lightbox = c.lightbox.Prev()
}

// CloseLightbox hides the viewer.
func (c *NoteController) CloseLightbox() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lightbox = c.lightbox.Close()
}

// DeleteCurrentMedia removes the attachment on screen and closes the viewer.
func (c *NoteController) DeleteCurrentMedia(ctx context.Context) error {
	c.mu.Lock()
	t, ok := c.lightbox.DeleteTarget()
	c.lightbox = c.lightbox.Close()
	c.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := c.store.RemoveMedia(ctx, c.userID, t.OwnerID, t.Index)
	return err
}

// PlayVideo opens the player on url; ClosePlayer hides it.
func (c *NoteController) PlayVideo(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = url
}

func (c *NoteController) ClosePlayer() { c.PlayVideo("") }

// Playing returns the URL in the player, if any.
func (c *NoteController) Playing() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}
