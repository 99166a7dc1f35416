package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fitlog/internal/app"
	"fitlog/internal/domain"
)

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "testuser", PasswordHash: string(hash)}, nil
		},
	}

	var gotUA, gotIP string
	var gotExpiry time.Time
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
			assert.Equal(t, int64(1), userID)
			assert.NotEmpty(t, token)
			gotUA, gotIP, gotExpiry = userAgent, ip, expiresAt
			return nil
		},
	}

	svc := app.NewAuthService(users, sessions)
	token, err := svc.Login(ctx, "testuser", password, "curl/8", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "curl/8", gotUA)
	assert.Equal(t, "10.0.0.1", gotIP)
	assert.WithinDuration(t, time.Now().Add(app.SessionTTL), gotExpiry, time.Minute)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "testuser", PasswordHash: string(hash)}, nil
		},
	}

	svc := app.NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "testuser", "wrongpass", "ua", "ip")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) { return nil, nil },
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "ghost", "pw", "ua", "ip")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestAuthService_ValidateSession(t *testing.T) {
	user := &domain.User{ID: 1, Username: "testuser"}
	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) { return user, nil },
	}

	tests := []struct {
		name        string
		session     *domain.Session
		userAgent   string
		wantErr     error
		wantDeleted bool
	}{
		{
			name:      "valid",
			session:   &domain.Session{Token: "t", UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)},
			userAgent: "ua",
		},
		{
			name:        "expired",
			session:     &domain.Session{Token: "t", UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(-time.Hour)},
			userAgent:   "ua",
			wantErr:     app.ErrSessionExpired,
			wantDeleted: true,
		},
		{
			name:        "different user agent",
			session:     &domain.Session{Token: "t", UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)},
			userAgent:   "other",
			wantErr:     app.ErrSessionExpired,
			wantDeleted: true,
		},
		{
			name:      "missing",
			userAgent: "ua",
			wantErr:   app.ErrSessionNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted := false
			sessions := &mockSessionRepo{
				getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) { return tc.session, nil },
				deleteFn: func(ctx context.Context, tok string) error {
					deleted = true
					return nil
				},
			}
			svc := app.NewAuthService(users, sessions)
			got, err := svc.ValidateSession(context.Background(), "t", tc.userAgent)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "testuser", got.Username)
			}
			assert.Equal(t, tc.wantDeleted, deleted)
		})
	}
}

func TestAuthService_CreateInitialUser(t *testing.T) {
	created := false
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 0, nil },
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			created = true
			assert.Equal(t, "admin", username)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("password123")))
			return &domain.User{ID: 1, Username: username}, nil
		},
	}

	svc := app.NewAuthService(users, &mockSessionRepo{})
	require.NoError(t, svc.CreateInitialUser(context.Background(), "admin", "password123"))
	assert.True(t, created)

	users.countFn = func(ctx context.Context) (int, error) { return 1, nil }
	assert.ErrorIs(t, svc.CreateInitialUser(context.Background(), "admin", "password123"), app.ErrSetupDone)

	has, err := svc.HasUsers(context.Background())
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAuthService_ValidateForwardAuth(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			if username == "ssouser" {
				return &domain.User{ID: 1, Username: username}, nil
			}
			return nil, errors.New("not found")
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			assert.Empty(t, passwordHash)
			return &domain.User{ID: 2, Username: username}, nil
		},
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})

	u, err := svc.ValidateForwardAuth(context.Background(), "ssouser")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	u, err = svc.ValidateForwardAuth(context.Background(), "newssouser")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)

	_, err = svc.ValidateForwardAuth(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthService_PurgeExpired(t *testing.T) {
	called := false
	sessions := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) error {
			called = true
			return nil
		},
	}
	svc := app.NewAuthService(&mockUserRepo{}, sessions)
	require.NoError(t, svc.PurgeExpired(context.Background()))
	assert.True(t, called)
}

func TestAuthService_CreateInitialUser_Validation(t *testing.T) {
	svc := app.NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	assert.ErrorIs(t, svc.CreateInitialUser(context.Background(), "  ", "password123"), app.ErrValidation)
	assert.ErrorIs(t, svc.CreateInitialUser(context.Background(), "admin", "short"), app.ErrValidation)
}

func TestAuthService_Login_PasswordlessUser(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 3, Username: username}, nil
		},
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "ssouser", "", "ua", "ip")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestAuthService_LoginWithUser_CreateRace(t *testing.T) {
	lookups := 0
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			lookups++
			if lookups == 1 {
				return nil, nil
			}
			return &domain.User{ID: 7, Username: username}, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			return nil, errors.New("duplicate key")
		},
	}
	var gotUser int64
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
			gotUser = userID
			return nil
		},
	}
	svc := app.NewAuthService(users, sessions)
	token, err := svc.LoginWithUser(context.Background(), "maria", "ua", "ip")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(7), gotUser)
	assert.Equal(t, 2, lookups)
}
