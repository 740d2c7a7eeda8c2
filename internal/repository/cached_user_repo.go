package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/domain"
)

// cachedUserRepository decorates a UserRepository with a read-through
// cache on by-username lookups, the hot path of the authentication gate.
// Mutations invalidate the cached entry; cache failures degrade to the
// underlying repository rather than failing the request.
type cachedUserRepository struct {
	inner  UserRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedUserRepository wraps inner with a by-username lookup cache.
func NewCachedUserRepository(inner UserRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) UserRepository {
	return &cachedUserRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "user_cache").Logger(),
	}
}

// cacheEntry is the cached wire form of a user. The domain struct hides
// the password hash from JSON on purpose; the cache is trusted storage
// and needs it to answer authentication lookups.
type cacheEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Hash     string `json:"hash"`
}

func userKey(username string) string {
	return "user:name:" + username
}

func (r *cachedUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if data, err := r.cache.Get(ctx, userKey(username)); err == nil {
		var entry cacheEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			return &domain.User{
				ID:           entry.ID,
				Username:     entry.Username,
				PasswordHash: entry.Hash,
			}, nil
		}
		// Unreadable entry, fall through to the store.
		_ = r.cache.Delete(ctx, userKey(username))
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn().Err(err).Str("username", username).Msg("cache read failed")
	}

	user, err := r.inner.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	entry := cacheEntry{ID: user.ID, Username: user.Username, Hash: user.PasswordHash}
	if data, err := json.Marshal(entry); err == nil {
		if err := r.cache.Set(ctx, userKey(username), data, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("username", username).Msg("cache write failed")
		}
	}

	return user, nil
}

func (r *cachedUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if err := r.inner.Upsert(ctx, user); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, userKey(user.Username)); err != nil {
		r.logger.Warn().Err(err).Str("username", user.Username).Msg("cache invalidation failed")
	}
	return nil
}

func (r *cachedUserRepository) Delete(ctx context.Context, id int64) error {
	// Resolve the username first so the cached entry can be dropped.
	user, err := r.inner.GetByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}

	if user != nil {
		if err := r.cache.Delete(ctx, userKey(user.Username)); err != nil {
			r.logger.Warn().Err(err).Str("username", user.Username).Msg("cache invalidation failed")
		}
	}
	return nil
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.inner.List(ctx)
}

func (r *cachedUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.inner.ExistsByUsername(ctx, username)
}

var _ UserRepository = (*cachedUserRepository)(nil)
