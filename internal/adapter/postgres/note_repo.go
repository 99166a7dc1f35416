package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fitlog/internal/domain"
)

var _ domain.NoteRepository = (*DB)(nil)

// JSONB columns are read back as text so both drivers scan them the same way.
type noteRow struct {
	ID         string    `db:"id"`
	UserID     int64     `db:"user_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	Media      string    `db:"media"`
	VideoLinks string    `db:"video_links"`
	CreatedAt  time.Time `db:"created_at"`
}

const noteSelect = "SELECT id, user_id, title, content, media::text AS media, video_links::text AS video_links, created_at FROM notes"

const insertNote = `INSERT INTO notes (id, user_id, title, content, media, video_links, created_at)
VALUES (:id, :user_id, :title, :content, CAST(:media AS JSONB), CAST(:video_links AS JSONB), :created_at)`

func newNoteRow(userID int64, n domain.Note) (noteRow, error) {
	media, err := marshalList(n.Media)
	if err != nil {
		return noteRow{}, err
	}
	links, err := marshalList(n.VideoLinks)
	if err != nil {
		return noteRow{}, err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return noteRow{
		ID: n.ID, UserID: userID, Title: n.Title, Content: n.Content,
		Media: media, VideoLinks: links, CreatedAt: n.CreatedAt.UTC(),
	}, nil
}

func (r noteRow) toDomain() (domain.Note, error) {
	n := domain.Note{ID: r.ID, UserID: r.UserID, Title: r.Title, Content: r.Content, CreatedAt: r.CreatedAt}
	if err := json.Unmarshal([]byte(r.Media), &n.Media); err != nil {
		return n, err
	}
	if err := json.Unmarshal([]byte(r.VideoLinks), &n.VideoLinks); err != nil {
		return n, err
	}
	return n, nil
}

// marshalList encodes a nil slice as an empty JSON array.
func marshalList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

// ListNotes returns the user's notes, newest first.
func (d *DB) ListNotes(ctx context.Context, userID int64) ([]domain.Note, error) {
	rows := []noteRow{}
	if err := d.sql.SelectContext(ctx, &rows, noteSelect+" WHERE user_id = $1 ORDER BY created_at DESC", userID); err != nil {
		return nil, err
	}
	out := make([]domain.Note, 0, len(rows))
	for _, r := range rows {
		n, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// GetNote returns nil when the note does not exist.
func (d *DB) GetNote(ctx context.Context, userID int64, id string) (*domain.Note, error) {
	var r noteRow
	err := d.sql.GetContext(ctx, &r, noteSelect+" WHERE user_id = $1 AND id = $2", userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n, err := r.toDomain()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// AddNote inserts n under a fresh ID.
func (d *DB) AddNote(ctx context.Context, userID int64, n domain.Note) (string, error) {
	n.ID = uuid.NewString()
	row, err := newNoteRow(userID, n)
	if err != nil {
		return "", err
	}
	if _, err := d.sql.NamedExecContext(ctx, insertNote, row); err != nil {
		return "", err
	}
	return n.ID, nil
}

// UpdateNote replaces title, content, media and links.
func (d *DB) UpdateNote(ctx context.Context, userID int64, n domain.Note) error {
	row, err := newNoteRow(userID, n)
	if err != nil {
		return err
	}
	res, err := d.sql.NamedExecContext(ctx, `UPDATE notes SET
title = :title, content = :content, media = CAST(:media AS JSONB), video_links = CAST(:video_links AS JSONB)
WHERE id = :id AND user_id = :user_id`, row)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteNote removes the note. Unknown IDs are ignored.
func (d *DB) DeleteNote(ctx context.Context, userID int64, id string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM notes WHERE user_id = $1 AND id = $2", userID, id)
	return err
}

// ReplaceNotes swaps all of the user's notes in one transaction.
func (d *DB) ReplaceNotes(ctx context.Context, userID int64, notes []domain.Note) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE user_id = $1", userID); err != nil {
			return err
		}
		for _, n := range notes {
			if n.ID == "" {
				n.ID = uuid.NewString()
			}
			row, err := newNoteRow(userID, n)
			if err != nil {
				return err
			}
			if _, err := tx.NamedExecContext(ctx, insertNote, row); err != nil {
				return err
			}
		}
		return nil
	})
}
