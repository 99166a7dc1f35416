package sqlite

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fitlog/internal/domain"
)

var _ domain.WeightRepository = (*DB)(nil)

func weightFromDomain(userID int64, e domain.WeightEntry) weightModel {
	return weightModel{
		ID: e.ID, UserID: userID, Date: e.Date, Weight: e.Weight, Height: e.Height,
		FatPercentage: e.FatPercentage, MusclePercentage: e.MusclePercentage,
		VisceralFat: e.VisceralFat, IMC: e.IMC, CreatedAt: e.CreatedAt,
	}
}

func (m weightModel) toDomain() domain.WeightEntry {
	return domain.WeightEntry{
		ID: m.ID, UserID: m.UserID, Date: m.Date, Weight: m.Weight, Height: m.Height,
		FatPercentage: m.FatPercentage, MusclePercentage: m.MusclePercentage,
		VisceralFat: m.VisceralFat, IMC: m.IMC, CreatedAt: m.CreatedAt,
	}
}

func (d *DB) ListWeightEntries(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	var rows []weightModel
	err := d.with(ctx).Where("user_id = ?", userID).
		Order("date DESC").Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.WeightEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (d *DB) GetWeightEntry(ctx context.Context, userID int64, id string) (*domain.WeightEntry, error) {
	var m weightModel
	err := d.with(ctx).Where("user_id = ? AND id = ?", userID, id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e := m.toDomain()
	return &e, nil
}

func (d *DB) AddWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) (string, error) {
	m := weightFromDomain(userID, e)
	m.ID = uuid.NewString()
	if err := d.with(ctx).Create(&m).Error; err != nil {
		return "", err
	}
	return m.ID, nil
}

// UpdateWeightEntry writes every field, blanks included.
func (d *DB) UpdateWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) error {
	res := d.with(ctx).Model(&weightModel{}).
		Where("user_id = ? AND id = ?", userID, e.ID).
		Updates(map[string]any{
			"date":              e.Date,
			"weight":            e.Weight,
			"height":            e.Height,
			"fat_percentage":    e.FatPercentage,
			"muscle_percentage": e.MusclePercentage,
			"visceral_fat":      e.VisceralFat,
			"imc":               e.IMC,
		})
	return requireRow(res)
}

func (d *DB) DeleteWeightEntry(ctx context.Context, userID int64, id string) error {
	return d.with(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&weightModel{}).Error
}

func (d *DB) ReplaceWeightEntries(ctx context.Context, userID int64, entries []domain.WeightEntry) error {
	return d.with(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&weightModel{}).Error; err != nil {
			return err
		}
		for _, e := range entries {
			m := weightFromDomain(userID, e)
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
