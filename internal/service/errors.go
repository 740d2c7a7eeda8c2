// Package service provides business logic services for Courier.
package service

import "errors"

// Validation errors. Store and authentication failures use the sentinel
// errors in the domain package.
var (
	ErrInvalidPassword = errors.New("invalid password: must be at least 8 characters")
	ErrInvalidUsername = errors.New("invalid username: must be 1-255 characters")
)

// ErrNotAuthenticated wraps every gate rejection, whatever the cause.
// Callers that must not reveal whether the username exists branch on
// this; the underlying ErrUserNotFound or ErrInvalidCredentials stays
// reachable through errors.Is.
var ErrNotAuthenticated = errors.New("authentication failed")
