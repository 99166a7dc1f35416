package main

import (
	"context"
	"fmt"

	adapthttp "fitlog/internal/adapter/http"
	"fitlog/internal/adapter/memory"
	"fitlog/internal/adapter/postgres"
	"fitlog/internal/adapter/sqlite"
	"fitlog/internal/app"
	"fitlog/internal/config"
	"fitlog/internal/domain"
)

// backend is an opened store with every repository port it serves.
type backend struct {
	weights   domain.WeightRepository
	notes     domain.NoteRepository
	exercises domain.ExerciseRepository
	users     domain.UserRepository
	sessions  domain.SessionRepository
	ping      func(ctx context.Context) error
	close     func() error
}

func openBackend(cfg *config.Config) (*backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memoryBackend(memory.New()), nil
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &backend{
			weights: db, notes: db, exercises: db, users: db,
			sessions: postgres.NewSessionRepo(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return &backend{
			weights: db, notes: db, exercises: db, users: db,
			sessions: sqlite.NewSessionRepo(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func memoryBackend(db *memory.DB) *backend {
	return &backend{
		weights: db, notes: db, exercises: db, users: db,
		sessions: db.NewSessionRepo(),
		ping:     func(context.Context) error { return nil },
		close:    func() error { return nil },
	}
}

func (b *backend) services() adapthttp.Services {
	return adapthttp.Services{
		Weight:   app.NewWeightService(b.weights),
		Notes:    app.NewNoteService(b.notes),
		Summary:  app.NewSummaryService(b.exercises),
		Transfer: app.NewTransferService(b.weights, b.notes, b.exercises),
		Charts:   app.NewChartsService(b.weights),
		Auth:     app.NewAuthService(b.users, b.sessions),
	}
}
