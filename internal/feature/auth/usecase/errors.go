// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned uniformly for an unknown email or a wrong
	// password, so login failures never reveal whether the account exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a signup password is shorter than the
	// minimum policy.
	ErrWeakPassword = errors.New("password does not meet the minimum length")

	// ErrHashingFailure is returned when the key derivation itself fails.
	// It is internal to the request and never retried.
	ErrHashingFailure = errors.New("password hashing failed")

	// ErrTimeout is returned when the store or the key derivation misses the
	// request deadline. It is distinct from ErrInvalidCredentials so callers
	// can retry.
	ErrTimeout = errors.New("request timed out")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")

	// ErrInvalidRefreshToken is returned when a refresh token is invalid or malformed.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
