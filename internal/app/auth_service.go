// Package app holds the application services: the weight history, notes,
// workout summary, backups, charts and login sessions.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fitlog/internal/domain"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 24 * time.Hour

const minPasswordLen = 8

// AuthService issues and checks login sessions. Users created through SSO
// or forward auth have no password and can only log in that way.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	now      func() time.Time
}

// NewAuthService creates an AuthService over the given repositories.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions, now: time.Now}
}

// Login checks a password and opens a session bound to userAgent.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil || u == nil || u.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(ctx, u.ID, userAgent, ip)
}

// LoginWithUser opens a session for a user already authenticated by the
// identity provider, provisioning the account on first login.
func (s *AuthService) LoginWithUser(ctx context.Context, username, userAgent, ip string) (string, error) {
	u, err := s.provision(ctx, username)
	if err != nil {
		return "", err
	}
	return s.issue(ctx, u.ID, userAgent, ip)
}

// Logout drops the session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession resolves token to its user. A session presented by a
// different user agent than the one that created it is revoked.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil || sess == nil {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(sess.ExpiresAt) || sess.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CreateInitialUser registers the first account. It fails with ErrSetupDone
// once any user exists.
func (s *AuthService) CreateInitialUser(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must have at least %d characters", ErrValidation, minPasswordLen)
	}
	has, err := s.HasUsers(ctx)
	if err != nil {
		return err
	}
	if has {
		return ErrSetupDone
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.users.Create(ctx, username, string(hash))
	return err
}

// ValidateForwardAuth resolves the user named by a reverse proxy's
// Remote-User header, creating it on first sight.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if strings.TrimSpace(remoteUser) == "" {
		return nil, fmt.Errorf("%w: empty Remote-User", ErrInvalidCredentials)
	}
	return s.provision(ctx, remoteUser)
}

// PurgeExpired removes every session past its expiry.
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

// HasUsers reports whether initial setup has already happened.
func (s *AuthService) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// provision returns the named user, creating a password-less account when
// it does not exist yet. A concurrent create loses to the unique username,
// so the lookup is retried once.
func (s *AuthService) provision(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if u, err := s.users.GetByUsername(ctx, username); err == nil && u != nil {
		return u, nil
	}
	u, err := s.users.Create(ctx, username, "")
	if err == nil {
		return u, nil
	}
	if again, gerr := s.users.GetByUsername(ctx, username); gerr == nil && again != nil {
		return again, nil
	}
	return nil, fmt.Errorf("provision user %q: %w", username, err)
}

func (s *AuthService) issue(ctx context.Context, userID int64, userAgent, ip string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(raw)
	if err := s.sessions.Create(ctx, userID, token, userAgent, ip, s.now().Add(SessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}
