package app_test

import (
	"context"
	"errors"
	"time"

	"fitlog/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

// mockWeightRepo only stubs what the failure-path tests need; every other
// method reports success with no data.
type mockWeightRepo struct {
	listFn    func(ctx context.Context, userID int64) ([]domain.WeightEntry, error)
	getFn     func(ctx context.Context, userID int64, id string) (*domain.WeightEntry, error)
	addFn     func(ctx context.Context, userID int64, e domain.WeightEntry) (string, error)
	updateFn  func(ctx context.Context, userID int64, e domain.WeightEntry) error
	replaceFn func(ctx context.Context, userID int64, entries []domain.WeightEntry) error
}

func (m *mockWeightRepo) ListWeightEntries(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWeightRepo) GetWeightEntry(ctx context.Context, userID int64, id string) (*domain.WeightEntry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockWeightRepo) AddWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) (string, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, e)
	}
	return "w1", nil
}

func (m *mockWeightRepo) UpdateWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, e)
	}
	return nil
}

func (m *mockWeightRepo) DeleteWeightEntry(ctx context.Context, userID int64, id string) error {
	return nil
}

func (m *mockWeightRepo) ReplaceWeightEntries(ctx context.Context, userID int64, entries []domain.WeightEntry) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, userID, entries)
	}
	return nil
}

func ptr(v float64) *float64 { return &v }
