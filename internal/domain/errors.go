// Package domain contains the core business entities for Courier.
package domain

import "errors"

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.),
// which are wrapped plain errors; callers branch with errors.Is.

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates credential verification failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIntegrityViolation indicates a uniqueness or foreign-key
	// constraint was broken at the store level: a message referencing a
	// nonexistent user, or a user delete blocked by referencing messages.
	ErrIntegrityViolation = errors.New("integrity constraint violation")
)
