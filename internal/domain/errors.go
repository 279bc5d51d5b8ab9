package domain

import "errors"

// Error classes shared by the services and the HTTP boundary. Services
// wrap these with context; handlers map them to status codes with
// errors.Is.
var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate username.
	ErrConflict = errors.New("already exists")
	// ErrForbidden indicates an authenticated caller lacks permission.
	ErrForbidden = errors.New("forbidden")
)
