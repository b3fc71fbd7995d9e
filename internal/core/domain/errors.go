package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUsernameTaken is returned when registration collides with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated means no trustworthy identity could be established for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity is known but its role does not match.
	ErrForbidden = errors.New("access forbidden")
	// ErrIdentityNotFound is returned by stores and admin operations on a missing record.
	ErrIdentityNotFound = errors.New("user not found")
	// ErrInvalidInput reports a request the core refuses to act on.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTooManyAttempts is returned while a username is locked out after failed logins.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

// ThrottledError carries how long the caller should wait before retrying a login.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%v: retry after %s", ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error { return ErrTooManyAttempts }

// InvalidInput wraps ErrInvalidInput with a human-readable reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
