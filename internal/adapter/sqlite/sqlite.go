// Package sqlite stores fitlog data in a single local database file through
// gorm. It is the default store for single-user installs.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fitlog/internal/domain"
)

// DB wraps a gorm handle and implements every repository port.
type DB struct {
	gorm *gorm.DB
}

// Entry and note ids are unique per owner, so one backup can be restored
// into several accounts.
type weightModel struct {
	UserID           int64  `gorm:"primaryKey;autoIncrement:false"`
	ID               string `gorm:"primaryKey"`
	Date             string `gorm:"index;not null"`
	Weight           string
	Height           string
	FatPercentage    string
	MusclePercentage string
	VisceralFat      string
	IMC              string `gorm:"column:imc"`
	CreatedAt        time.Time
}

func (weightModel) TableName() string { return "weight_entries" }

type noteModel struct {
	UserID     int64  `gorm:"primaryKey;autoIncrement:false"`
	ID         string `gorm:"primaryKey"`
	Title      string
	Content    string
	Media      datatypes.JSON
	VideoLinks datatypes.JSON
	CreatedAt  time.Time
}

func (noteModel) TableName() string { return "notes" }

// Seq keeps insertion order; ID is unique per user and book.
type exerciseModel struct {
	Seq          int64  `gorm:"primaryKey;autoIncrement"`
	ID           string `gorm:"uniqueIndex:idx_exercise_owner;not null"`
	UserID       int64  `gorm:"uniqueIndex:idx_exercise_owner;not null"`
	Book         string `gorm:"uniqueIndex:idx_exercise_owner;not null"`
	Date         string `gorm:"index"`
	Day          string
	ExerciseName string
	Sede         string
	Series       string
	Reps         string
	Kilos        string
	Tiempo       string
	Calorias     string
	DistanceUnit string
	Notes        string
	Media        datatypes.JSON
}

func (exerciseModel) TableName() string { return "exercise_logs" }

type userModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	Token     string `gorm:"primaryKey"`
	UserID    int64  `gorm:"index;not null"`
	UserAgent string
	IP        string    `gorm:"column:ip"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (sessionModel) TableName() string { return "sessions" }

// Open opens (creating if needed) the database file at path and migrates it.
func Open(path string) (*DB, error) {
	g, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers on the single file.
	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = g.AutoMigrate(&userModel{}, &sessionModel{}, &weightModel{}, &noteModel{}, &exerciseModel{})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{gorm: g}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the file is still reachable.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type txKey struct{}

// InTx runs fn in one transaction; every repository call made with the
// context fn receives uses it. The single connection would otherwise be
// held by the transaction and block those calls.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.with(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (d *DB) with(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return d.gorm.WithContext(ctx)
}

func requireRow(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toJSON[T any](v []T) (datatypes.JSON, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	return datatypes.JSON(b), err
}

func fromJSON[T any](raw datatypes.JSON) ([]T, error) {
	out := []T{}
	if len(raw) == 0 {
		return out, nil
	}
	err := json.Unmarshal(raw, &out)
	return out, err
}
