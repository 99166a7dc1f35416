package domain

import (
	"context"
	"time"
)

// MediaType distinguishes attached pictures from clips.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Media is an attachment embedded as a data URL.
type Media struct {
	Type    MediaType `json:"type"`
	DataURL string    `json:"dataUrl"`
}

// LinkItem is an external video link. Name is editable independently of URL.
type LinkItem struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Note is a free-form tip ("consejo") with optional media and video links.
type Note struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Media      []Media    `json:"media"`
	VideoLinks []LinkItem `json:"videoLinks"`
}

// NoteRepository is the port for note persistence.
type NoteRepository interface {
	ListNotes(ctx context.Context, userID int64) ([]Note, error)
	GetNote(ctx context.Context, userID int64, id string) (*Note, error)
	AddNote(ctx context.Context, userID int64, n Note) (string, error)
	UpdateNote(ctx context.Context, userID int64, n Note) error
	DeleteNote(ctx context.Context, userID int64, id string) error
	ReplaceNotes(ctx context.Context, userID int64, notes []Note) error
}

// MediaTypeFor picks the media type from a MIME type: anything that is not
// an image is treated as video.
func MediaTypeFor(mime string) MediaType {
	if len(mime) >= 5 && mime[:5] == "image" {
		return MediaImage
	}
	return MediaVideo
}
