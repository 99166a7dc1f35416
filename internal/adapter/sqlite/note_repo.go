package sqlite

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fitlog/internal/domain"
)

var _ domain.NoteRepository = (*DB)(nil)

func noteFromDomain(userID int64, n domain.Note) (noteModel, error) {
	media, err := toJSON(n.Media)
	if err != nil {
		return noteModel{}, err
	}
	links, err := toJSON(n.VideoLinks)
	if err != nil {
		return noteModel{}, err
	}
	return noteModel{
		ID: n.ID, UserID: userID, Title: n.Title, Content: n.Content,
		Media: media, VideoLinks: links, CreatedAt: n.CreatedAt,
	}, nil
}

func (m noteModel) toDomain() (domain.Note, error) {
	n := domain.Note{ID: m.ID, UserID: m.UserID, Title: m.Title, Content: m.Content, CreatedAt: m.CreatedAt}
	var err error
	if n.Media, err = fromJSON[domain.Media](m.Media); err != nil {
		return n, err
	}
	n.VideoLinks, err = fromJSON[domain.LinkItem](m.VideoLinks)
	return n, err
}

func (d *DB) ListNotes(ctx context.Context, userID int64) ([]domain.Note, error) {
	var rows []noteModel
	if err := d.with(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
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

func (d *DB) GetNote(ctx context.Context, userID int64, id string) (*domain.Note, error) {
	var m noteModel
	err := d.with(ctx).Where("user_id = ? AND id = ?", userID, id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n, err := m.toDomain()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (d *DB) AddNote(ctx context.Context, userID int64, n domain.Note) (string, error) {
	m, err := noteFromDomain(userID, n)
	if err != nil {
		return "", err
	}
	m.ID = uuid.NewString()
	if err := d.with(ctx).Create(&m).Error; err != nil {
		return "", err
	}
	return m.ID, nil
}

func (d *DB) UpdateNote(ctx context.Context, userID int64, n domain.Note) error {
	m, err := noteFromDomain(userID, n)
	if err != nil {
		return err
	}
	res := d.with(ctx).Model(&noteModel{}).
		Where("user_id = ? AND id = ?", userID, n.ID).
		Updates(map[string]any{
			"title":       m.Title,
			"content":     m.Content,
			"media":       m.Media,
			"video_links": m.VideoLinks,
		})
	return requireRow(res)
}

func (d *DB) DeleteNote(ctx context.Context, userID int64, id string) error {
	return d.with(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&noteModel{}).Error
}

func (d *DB) ReplaceNotes(ctx context.Context, userID int64, notes []domain.Note) error {
	return d.with(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&noteModel{}).Error; err != nil {
			return err
		}
		for _, n := range notes {
			m, err := noteFromDomain(userID, n)
			if err != nil {
				return err
			}
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
