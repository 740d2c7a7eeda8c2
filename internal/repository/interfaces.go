// Package repository defines data access interfaces for Courier.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while
// keeping the service layer clean.
package repository

import (
	"context"

	"github.com/lkral/courier/internal/domain"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Upsert inserts a new row if the username is absent, otherwise
	// replaces the existing row's password hash. It runs as a single
	// atomic statement keyed on the username uniqueness constraint, so
	// concurrent upserts on the same username cannot race into duplicate
	// rows. On success the (possibly newly assigned) id is written back
	// to user.ID; on failure user.ID is left untouched.
	Upsert(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns domain.ErrUserNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns domain.ErrUserNotFound when no row matches.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns all users.
	List(ctx context.Context) ([]*domain.User, error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Delete removes the row with the given id. Deleting a nonexistent
	// id is a no-op. Deleting a user that messages still reference
	// returns domain.ErrIntegrityViolation.
	Delete(ctx context.Context, id int64) error
}

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	// Create inserts the message, assigning CreationDate from the store
	// clock and writing the generated id back to msg.ID. A from/to id
	// that does not reference an existing user returns
	// domain.ErrIntegrityViolation; no row is persisted.
	Create(ctx context.Context, msg *domain.Message) error

	// ListByRecipient returns every message addressed to userID,
	// ordered by id ascending.
	ListByRecipient(ctx context.Context, userID int64) ([]*domain.Message, error)
}

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
