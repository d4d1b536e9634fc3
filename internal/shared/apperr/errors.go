// Package apperr declares the error taxonomy shared by every service.
// Services wrap these sentinels with context via fmt.Errorf("%w: ...");
// the transport layer maps them to HTTP statuses.
package apperr

import "errors"

var (
	// ErrNotFound signals the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrForbidden signals a policy denial, by role or by ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized signals a missing/invalid token or failed login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput signals a malformed or rejected request.
	ErrInvalidInput = errors.New("invalid input")
)
