// Package crypto provides cryptographic utilities for Courier.
package crypto

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted one-way digest of plaintext using bcrypt.
// A fresh random salt is generated on every call, so hashing the same
// plaintext twice yields different digests. Equality can only be tested
// through VerifyPassword.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword checks plaintext against a bcrypt digest.
// bcrypt recomputes the digest with the salt embedded in hash and compares
// in constant time, so the comparison is safe for attacker-controlled
// input. Malformed or foreign-format hashes report false, never an error.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
