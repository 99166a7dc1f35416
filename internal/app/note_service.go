package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitlog/internal/domain"
)

// NoteForm carries the editable fields of a note.
type NoteForm struct {
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Media      []domain.Media    `json:"media"`
	VideoLinks []domain.LinkItem `json:"videoLinks"`
}

// NoteService encapsulates the notes ("consejos") use cases.
type NoteService struct {
	repo domain.NoteRepository
	now  func() time.Time
}

// NewNoteService creates a NoteService backed by the given repository.
func NewNoteService(repo domain.NoteRepository) *NoteService {
	return &NoteService{repo: repo, now: time.Now}
}

// List returns the user's notes, newest first.
func (s *NoteService) List(ctx context.Context, userID int64) ([]domain.Note, error) {
	notes, err := s.repo.ListNotes(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// Add stores a new note.
func (s *NoteService) Add(ctx context.Context, userID int64, form NoteForm) (*domain.Note, error) {
	n := domain.Note{
		UserID:     userID,
		CreatedAt:  s.now().UTC(),
		Title:      form.Title,
		Content:    form.Content,
		Media:      cleanMedia(form.Media),
		VideoLinks: cleanLinks(form.VideoLinks),
	}
	id, err := s.repo.AddNote(ctx, userID, n)
	if err != nil {
		return nil, err
	}
	n.ID = id
	return &n, nil
}

// Update replaces title, content, media and links of an existing note.
func (s *NoteService) Update(ctx context.Context, userID int64, id string, form NoteForm) (*domain.Note, error) {
	n, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	n.Title = form.Title
	n.Content = form.Content
	n.Media = cleanMedia(form.Media)
	n.VideoLinks = cleanLinks(form.VideoLinks)
	if err := s.repo.UpdateNote(ctx, userID, *n); err != nil {
		return nil, err
	}
	return n, nil
}

// Remove deletes a note; a missing note is not an error.
func (s *NoteService) Remove(ctx context.Context, userID int64, id string) error {
	return s.repo.DeleteNote(ctx, userID, id)
}

// RemoveMedia drops the attachment at index. Out-of-range indexes leave the
// note untouched.
func (s *NoteService) RemoveMedia(ctx context.Context, userID int64, id string, index int) (*domain.Note, error) {
	n, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(n.Media) {
		return n, nil
	}
	n.Media = append(n.Media[:index:index], n.Media[index+1:]...)
	if err := s.repo.UpdateNote(ctx, userID, *n); err != nil {
		return nil, err
	}
	return n, nil
}

// AddVideoLink appends a link to the note. Blank URLs and URLs the note
// already links to are ignored. The link is named "Video N" by position.
func (s *NoteService) AddVideoLink(ctx context.Context, userID int64, id, url string) (*domain.Note, error) {
	n, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	links, added := AppendVideoLink(n.VideoLinks, url)
	if !added {
		return n, nil
	}
	n.VideoLinks = links
	if err := s.repo.UpdateNote(ctx, userID, *n); err != nil {
		return nil, err
	}
	return n, nil
}

// RemoveVideoLink deletes a link by its ID.
func (s *NoteService) RemoveVideoLink(ctx context.Context, userID int64, id, linkID string) (*domain.Note, error) {
	n, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	kept := n.VideoLinks[:0:0]
	for _, l := range n.VideoLinks {
		if l.ID != linkID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(n.VideoLinks) {
		return n, nil
	}
	n.VideoLinks = kept
	if err := s.repo.UpdateNote(ctx, userID, *n); err != nil {
		return nil, err
	}
	return n, nil
}

// RenameVideoLink changes the display name of a link; the URL is kept.
func (s *NoteService) RenameVideoLink(ctx context.Context, userID int64, id, linkID, name string) (*domain.Note, error) {
	n, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	for i := range n.VideoLinks {
		if n.VideoLinks[i].ID == linkID {
			n.VideoLinks[i].Name = name
			if err := s.repo.UpdateNote(ctx, userID, *n); err != nil {
				return nil, err
			}
			return n, nil
		}
	}
	return nil, fmt.Errorf("video link %s: %w", linkID, ErrNotFound)
}

func (s *NoteService) get(ctx context.Context, userID int64, id string) (*domain.Note, error) {
	n, err := s.repo.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return n, nil
}

// AppendVideoLink adds url to links unless it is blank or already present.
func AppendVideoLink(links []domain.LinkItem, url string) ([]domain.LinkItem, bool) {
	url = strings.TrimSpace(url)
	if url == "" {
		return links, false
	}
	for _, l := range links {
		if l.URL == url {
			return links, false
		}
	}
	link := domain.LinkItem{
		ID:   uuid.NewString(),
		URL:  url,
		Name: fmt.Sprintf("Video %d", len(links)+1),
	}
	return append(links, link), true
}

func cleanMedia(media []domain.Media) []domain.Media {
	out := make([]domain.Media, 0, len(media))
	for _, m := range media {
		if m.DataURL == "" {
			continue
		}
		if m.Type != domain.MediaImage {
			m.Type = domain.MediaVideo
		}
		out = append(out, m)
	}
	return out
}

func cleanLinks(links []domain.LinkItem) []domain.LinkItem {
	out := make([]domain.LinkItem, 0, len(links))
	for _, l := range links {
		l.URL = strings.TrimSpace(l.URL)
		if l.URL == "" {
			continue
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		out = append(out, l)
	}
	return out
}
