package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fitlog/internal/domain"
)

var _ domain.ExerciseRepository = (*DB)(nil)

type exerciseRow struct {
	ID           string `db:"id"`
	UserID       int64  `db:"user_id"`
	Book         string `db:"book"`
	Date         string `db:"date"`
	Day          string `db:"day"`
	ExerciseName string `db:"exercise_name"`
	Sede         string `db:"sede"`
	Series       string `db:"series"`
	Reps         string `db:"reps"`
	Kilos        string `db:"kilos"`
	Tiempo       string `db:"tiempo"`
	Calorias     string `db:"calorias"`
	DistanceUnit string `db:"distance_unit"`
	Notes        string `db:"notes"`
	Media        string `db:"media"`
}

const exerciseSelect = `SELECT id, user_id, book, date, day, exercise_name, sede, series, reps, kilos,
tiempo, calorias, distance_unit, notes, media::text AS media FROM exercise_logs`

const insertExercise = `INSERT INTO exercise_logs (id, user_id, book, date, day, exercise_name, sede,
series, reps, kilos, tiempo, calorias, distance_unit, notes, media)
VALUES (:id, :user_id, :book, :date, :day, :exercise_name, :sede, :series, :reps, :kilos,
:tiempo, :calorias, :distance_unit, :notes, CAST(:media AS JSONB))`

func newExerciseRow(userID int64, book domain.Book, l domain.ExerciseLog) (exerciseRow, error) {
	media, err := marshalList(l.Media)
	if err != nil {
		return exerciseRow{}, err
	}
	return exerciseRow{
		ID: l.ID, UserID: userID, Book: string(book), Date: l.Date, Day: l.Day,
		ExerciseName: l.ExerciseName, Sede: l.Sede, Series: l.Series, Reps: l.Reps,
		Kilos: l.Kilos, Tiempo: l.Tiempo, Calorias: l.Calorias,
		DistanceUnit: l.DistanceUnit, Notes: l.Notes, Media: media,
	}, nil
}

func (r exerciseRow) toDomain() (domain.ExerciseLog, error) {
	l := domain.ExerciseLog{
		ID: r.ID, UserID: r.UserID, Date: r.Date, Day: r.Day, ExerciseName: r.ExerciseName,
		Sede: r.Sede, Series: r.Series, Reps: r.Reps, Kilos: r.Kilos, Tiempo: r.Tiempo,
		Calorias: r.Calorias, DistanceUnit: r.DistanceUnit, Notes: r.Notes,
	}
	err := json.Unmarshal([]byte(r.Media), &l.Media)
	return l, err
}

// ListExerciseLogs returns one collection in insertion order.
func (d *DB) ListExerciseLogs(ctx context.Context, userID int64, book domain.Book) ([]domain.ExerciseLog, error) {
	rows := []exerciseRow{}
	if err := d.sql.SelectContext(ctx, &rows,
		exerciseSelect+" WHERE user_id = $1 AND book = $2 ORDER BY seq", userID, string(book)); err != nil {
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

// GetExerciseLog returns nil when the log does not exist.
func (d *DB) GetExerciseLog(ctx context.Context, userID int64, book domain.Book, id string) (*domain.ExerciseLog, error) {
	var r exerciseRow
	err := d.sql.GetContext(ctx, &r, exerciseSelect+" WHERE user_id = $1 AND book = $2 AND id = $3", userID, string(book), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l, err := r.toDomain()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// AddExerciseLog inserts l under a fresh ID.
func (d *DB) AddExerciseLog(ctx context.Context, userID int64, book domain.Book, l domain.ExerciseLog) (string, error) {
	l.ID = uuid.NewString()
	row, err := newExerciseRow(userID, book, l)
	if err != nil {
		return "", err
	}
	if _, err := d.sql.NamedExecContext(ctx, insertExercise, row); err != nil {
		return "", err
	}
	return l.ID, nil
}

// UpdateExerciseLog replaces every field of an existing log.
func (d *DB) UpdateExerciseLog(ctx context.Context, userID int64, book domain.Book, l domain.ExerciseLog) error {
	row, err := newExerciseRow(userID, book, l)
	if err != nil {
		return err
	}
	res, err := d.sql.NamedExecContext(ctx, `UPDATE exercise_logs SET
date = :date, day = :day, exercise_name = :exercise_name, sede = :sede, series = :series,
reps = :reps, kilos = :kilos, tiempo = :tiempo, calorias = :calorias,
distance_unit = :distance_unit, notes = :notes, media = CAST(:media AS JSONB)
WHERE id = :id AND user_id = :user_id AND book = :book`, row)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteExerciseLog removes the log. Unknown IDs are ignored.
func (d *DB) DeleteExerciseLog(ctx context.Context, userID int64, book domain.Book, id string) error {
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM exercise_logs WHERE user_id = $1 AND book = $2 AND id = $3", userID, string(book), id)
	return err
}

// ReplaceExerciseLogs swaps one collection in one transaction.
func (d *DB) ReplaceExerciseLogs(ctx context.Context, userID int64, book domain.Book, logs []domain.ExerciseLog) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM exercise_logs WHERE user_id = $1 AND book = $2", userID, string(book)); err != nil {
			return err
		}
		for _, l := range logs {
			if l.ID == "" {
				l.ID = uuid.NewString()
			}
			row, err := newExerciseRow(userID, book, l)
			if err != nil {
				return err
			}
			if _, err := tx.NamedExecContext(ctx, insertExercise, row); err != nil {
				return err
			}
		}
		return nil
	})
}
