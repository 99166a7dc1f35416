package sqlite

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fitlog/internal/domain"
)

var _ domain.ExerciseRepository = (*DB)(nil)

func exerciseFromDomain(userID int64, book domain.Book, l domain.ExerciseLog) (exerciseModel, error) {
	media, err := toJSON(l.Media)
	if err != nil {
		return exerciseModel{}, err
	}
	return exerciseModel{
		ID: l.ID, UserID: userID, Book: string(book), Date: l.Date, Day: l.Day,
		ExerciseName: l.ExerciseName, Sede: l.Sede, Series: l.Series, Reps: l.Reps,
		Kilos: l.Kilos, Tiempo: l.Tiempo, Calorias: l.Calorias,
		DistanceUnit: l.DistanceUnit, Notes: l.Notes, Media: media,
	}, nil
}

func (m exerciseModel) toDomain() (domain.ExerciseLog, error) {
	l := domain.ExerciseLog{
		ID: m.ID, UserID: m.UserID, Date: m.Date, Day: m.Day, ExerciseName: m.ExerciseName,
		Sede: m.Sede, Series: m.Series, Reps: m.Reps, Kilos: m.Kilos, Tiempo: m.Tiempo,
		Calorias: m.Calorias, DistanceUnit: m.DistanceUnit, Notes: m.Notes,
	}
	var err error
	l.Media, err = fromJSON[domain.Media](m.Media)
	return l, err
}

func (d *DB) scopeBook(ctx context.Context, userID int64, book domain.Book) *gorm.DB {
	return d.with(ctx).Where("user_id = ? AND book = ?", userID, string(book))
}

func (d *DB) ListExerciseLogs(ctx context.Context, userID int64, book domain.Book) ([]domain.ExerciseLog, error) {
	var rows []exerciseModel
	if err := d.scopeBook(ctx, userID, book).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ExerciseLog, 0, len(rows))
	for _, r := range rows {
		l, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (d *DB) GetExerciseLog(ctx context.Context, userID int64, book domain.Book, id string) (*domain.ExerciseLog, error) {
	var m exerciseModel
	err := d.scopeBook(ctx, userID, book).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l, err := m.toDomain()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (d *DB) AddExerciseLog(ctx context.Context, userID int64, book domain.Book, l domain.ExerciseLog) (string, error) {
	m, err := exerciseFromDomain(userID, book, l)
	if err != nil {
		return "", err
	}
	m.ID = uuid.NewString()
	if err := d.with(ctx).Create(&m).Error; err != nil {
		return "", err
	}
	return m.ID, nil
}

func (d *DB) UpdateExerciseLog(ctx context.Context, userID int64, book domain.Book, l domain.ExerciseLog) error {
	m, err := exerciseFromDomain(userID, book, l)
	if err != nil {
		return err
	}
	res := d.scopeBook(ctx, userID, book).Model(&exerciseModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"date":          m.Date,
			"day":           m.Day,
			"exercise_name": m.ExerciseName,
			"sede":          m.Sede,
			"series":        m.Series,
			"reps":          m.Reps,
			"kilos":         m.Kilos,
			"tiempo":        m.Tiempo,
			"calorias":      m.Calorias,
			"distance_unit": m.DistanceUnit,
			"notes":         m.Notes,
			"media":         m.Media,
		})
	return requireRow(res)
}

func (d *DB) DeleteExerciseLog(ctx context.Context, userID int64, book domain.Book, id string) error {
	return d.scopeBook(ctx, userID, book).Where("id = ?", id).Delete(&exerciseModel{}).Error
}

func (d *DB) ReplaceExerciseLogs(ctx context.Context, userID int64, book domain.Book, logs []domain.ExerciseLog) error {
	return d.with(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND book = ?", userID, string(book)).Delete(&exerciseModel{}).Error
		if err != nil {
			return err
		}
		for _, l := range logs {
			m, err := exerciseFromDomain(userID, book, l)
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
