package app

import (
	"errors"
	"fmt"

	"fitlog/internal/domain"
)

var (
	// ErrValidation wraps every rejection of user-supplied input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound indicates that the targeted record does not exist.
	ErrNotFound = domain.ErrNotFound
	// ErrInvalidImport indicates that an import payload could not be accepted.
	ErrInvalidImport = errors.New("importación no válida")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
	// ErrSetupDone is returned by CreateInitialUser once an account exists.
	ErrSetupDone = errors.New("users already exist")
)

// ImportError is a rejected import. Its text is shown to the user as is;
// errors.Is matches it against ErrInvalidImport.
type ImportError struct {
	Reason string
}

func (e *ImportError) Error() string { return e.Reason }

func (e *ImportError) Is(target error) bool { return target == ErrInvalidImport }

func invalidImport(format string, args ...any) error {
	return &ImportError{Reason: fmt.Sprintf(format, args...)}
}
