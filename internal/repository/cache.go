// Package repository defines data access interfaces for Courier.
package repository

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Implemented in-process for single-node deployments and with Redis for
// multi-node deployments.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}
