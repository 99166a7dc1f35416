package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when an update targets a record
// that does not exist for the user.
var ErrNotFound = errors.New("not found")

// Transactor is implemented by stores that can group writes. Repository
// calls made with the context handed to fn commit or roll back together.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WeightEntry is one body-composition measurement. Metric fields hold the
// text exactly as the user typed it ("70,5", "080", ""); an empty string
// means the metric was not recorded.
type WeightEntry struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"-"`
	Date             string    `json:"date"`
	Weight           string    `json:"weight"`
	Height           string    `json:"height"`
	FatPercentage    string    `json:"fatPercentage"`
	MusclePercentage string    `json:"musclePercentage"`
	VisceralFat      string    `json:"visceralFat"`
	IMC              string    `json:"imc"`
	CreatedAt        time.Time `json:"createdAt"`
}

// WeightRepository is the port for weight-history persistence.
type WeightRepository interface {
	ListWeightEntries(ctx context.Context, userID int64) ([]WeightEntry, error)
	GetWeightEntry(ctx context.Context, userID int64, id string) (*WeightEntry, error)
	AddWeightEntry(ctx context.Context, userID int64, e WeightEntry) (string, error)
	UpdateWeightEntry(ctx context.Context, userID int64, e WeightEntry) error
	DeleteWeightEntry(ctx context.Context, userID int64, id string) error
	ReplaceWeightEntries(ctx context.Context, userID int64, entries []WeightEntry) error
}
