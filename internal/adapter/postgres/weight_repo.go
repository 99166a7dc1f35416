package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fitlog/internal/domain"
)

var _ domain.WeightRepository = (*DB)(nil)

type weightRow struct {
	ID               string    `db:"id"`
	UserID           int64     `db:"user_id"`
	Date             string    `db:"date"`
	Weight           string    `db:"weight"`
	Height           string    `db:"height"`
	FatPercentage    string    `db:"fat_percentage"`
	MusclePercentage string    `db:"muscle_percentage"`
	VisceralFat      string    `db:"visceral_fat"`
	IMC              string    `db:"imc"`
	CreatedAt        time.Time `db:"created_at"`
}

const weightColumns = "id, user_id, date, weight, height, fat_percentage, muscle_percentage, visceral_fat, imc, created_at"

func newWeightRow(userID int64, e domain.WeightEntry) weightRow {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return weightRow{
		ID: e.ID, UserID: userID, Date: e.Date, Weight: e.Weight, Height: e.Height,
		FatPercentage: e.FatPercentage, MusclePercentage: e.MusclePercentage,
		VisceralFat: e.VisceralFat, IMC: e.IMC, CreatedAt: e.CreatedAt.UTC(),
	}
}

func (r weightRow) toDomain() domain.WeightEntry {
	return domain.WeightEntry(r)
}

const insertWeight = `INSERT INTO weight_entries (` + weightColumns + `)
VALUES (:id, :user_id, :date, :weight, :height, :fat_percentage, :muscle_percentage, :visceral_fat, :imc, :created_at)`

// ListWeightEntries returns the user's entries, newest date first.
func (d *DB) ListWeightEntries(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	rows := []weightRow{}
	if err := d.sql.SelectContext(ctx, &rows,
		"SELECT "+weightColumns+" FROM weight_entries WHERE user_id = $1 ORDER BY date DESC, created_at DESC", userID); err != nil {
		return nil, err
	}
	out := make([]domain.WeightEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// GetWeightEntry returns nil when the entry does not exist.
func (d *DB) GetWeightEntry(ctx context.Context, userID int64, id string) (*domain.WeightEntry, error) {
	var r weightRow
	err := d.sql.GetContext(ctx, &r,
		"SELECT "+weightColumns+" FROM weight_entries WHERE user_id = $1 AND id = $2", userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e := r.toDomain()
	return &e, nil
}

// AddWeightEntry inserts e under a fresh ID.
func (d *DB) AddWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) (string, error) {
	e.ID = uuid.NewString()
	if _, err := d.sql.NamedExecContext(ctx, insertWeight, newWeightRow(userID, e)); err != nil {
		return "", err
	}
	return e.ID, nil
}

// UpdateWeightEntry replaces every field of an existing entry.
func (d *DB) UpdateWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) error {
	res, err := d.sql.NamedExecContext(ctx, `UPDATE weight_entries SET
date = :date, weight = :weight, height = :height, fat_percentage = :fat_percentage,
muscle_percentage = :muscle_percentage, visceral_fat = :visceral_fat, imc = :imc, created_at = :created_at
WHERE id = :id AND user_id = :user_id`, newWeightRow(userID, e))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteWeightEntry removes the entry. Unknown IDs are ignored.
func (d *DB) DeleteWeightEntry(ctx context.Context, userID int64, id string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM weight_entries WHERE user_id = $1 AND id = $2", userID, id)
	return err
}

// ReplaceWeightEntries swaps the user's whole history in one transaction.
func (d *DB) ReplaceWeightEntries(ctx context.Context, userID int64, entries []domain.WeightEntry) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM weight_entries WHERE user_id = $1", userID); err != nil {
			return err
		}
		for _, e := range entries {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if _, err := tx.NamedExecContext(ctx, insertWeight, newWeightRow(userID, e)); err != nil {
				return err
			}
		}
		return nil
	})
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
