package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fitlog/internal/domain"
)

var (
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.SessionRepository = (*SessionRepo)(nil)
)

func (m userModel) toDomain() *domain.User {
	return &domain.User{ID: m.ID, Username: m.Username, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt}
}

func (d *DB) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m userModel
	err := d.with(ctx).Where(query, arg).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.getUser(ctx, "username = ?", username)
}

func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return d.getUser(ctx, "id = ?", id)
}

func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	m := userModel{Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	if err := d.with(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (d *DB) Count(ctx context.Context) (int, error) {
	var n int64
	err := d.with(ctx).Model(&userModel{}).Count(&n).Error
	return int(n), err
}

// SessionRepo implements domain.SessionRepository. DB already has a Create
// method for users, so sessions get their own type.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(d *DB) *SessionRepo {
	return &SessionRepo{db: d}
}

func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	return r.db.with(ctx).Create(&sessionModel{
		Token: token, UserID: userID, UserAgent: userAgent, IP: ip,
		ExpiresAt: expiresAt.UTC(), CreatedAt: time.Now().UTC(),
	}).Error
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var m sessionModel
	err := r.db.with(ctx).Where("token = ?", token).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Token: m.Token, UserID: m.UserID, UserAgent: m.UserAgent, IP: m.IP,
		ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt,
	}, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	return r.db.with(ctx).Where("token = ?", token).Delete(&sessionModel{}).Error
}

func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	return r.db.with(ctx).Where("expires_at < ?", time.Now().UTC()).Delete(&sessionModel{}).Error
}
