package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrDuplicateIdentity = errors.New("duplicate_identity")

	// ErrInvalidToken is a refresh token that is malformed, badly signed or
	// expired.
	ErrInvalidToken = errors.New("invalid_token")

	// ErrEntityNotFound is a valid token or session whose backing record is
	// gone.
	ErrEntityNotFound = errors.New("entity_not_found")

	ErrInvalidInput = errors.New("invalid_input")
)
