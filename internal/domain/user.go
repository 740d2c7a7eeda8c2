// Package domain contains the core business entities for Courier.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the messaging backend.
package domain

import "github.com/lkral/courier/internal/pkg/crypto"

// SentinelID marks an in-memory entity that has not been persisted yet.
const SentinelID int64 = -1

// User represents a registered user in the system.
// Users are identified by a globally unique, case-sensitive username.
type User struct {
	// ID is the surrogate key assigned by the store on first persist.
	// SentinelID before persistence.
	ID int64 `json:"id"`

	// Username is the unique, immutable identity key for lookup.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// The plaintext is never stored or exposed in API responses.
	PasswordHash string `json:"-"`
}

// NewUser creates an unpersisted User and immediately hashes the
// supplied plaintext password. The plaintext is not retained.
func NewUser(username, password string) (*User, error) {
	u := &User{
		ID:       SentinelID,
		Username: username,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes plaintext and stores the resulting digest.
// This is the only way to change the credential; there is no
// plaintext-settable field.
func (u *User) SetPassword(plaintext string) error {
	hash, err := crypto.HashPassword(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// VerifyPassword checks plaintext against the stored hash.
func (u *User) VerifyPassword(plaintext string) bool {
	return crypto.VerifyPassword(plaintext, u.PasswordHash)
}

// Persisted reports whether the user has been committed to the store.
func (u *User) Persisted() bool {
	return u.ID != SentinelID
}
