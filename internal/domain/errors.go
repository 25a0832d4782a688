package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the username or the password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals a blocked account or a reached failure threshold.
	ErrAccountLocked = errors.New("account locked")
	// ErrSessionExpired signals an idle-expired or destroyed session.
	ErrSessionExpired = errors.New("session expired")
	// ErrStoreUnavailable marks transient persistence failures. Login fails
	// closed on it; it is never an authentication outcome of its own.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
)

// LoginDeniedError wraps an authentication sentinel together with the
// attempts the caller has left, so the login surface can warn users
// without distinguishing "just got blocked" from "still counting".
type LoginDeniedError struct {
	Reason            error
	RemainingAttempts int
}

func (e *LoginDeniedError) Error() string {
	return fmt.Sprintf("login denied: %v", e.Reason)
}

func (e *LoginDeniedError) Unwrap() error { return e.Reason }
