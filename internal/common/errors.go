// Package common defines shared constants and sentinel errors used across
// the client layers of authdesk. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Session-level errors.
	ErrorForbidden = errors.New("admin privileges required")
	ErrNotLoggedIn = errors.New("not logged in")

	// Validation errors, raised by views before any network call.
	ErrorValidation       = errors.New("validation error")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrEmptyField         = errors.New("field must not be empty")

	// Credential errors (malformed or undecodable token).
	ErrInvalidToken = errors.New("invalid token")
)
