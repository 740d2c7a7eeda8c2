package service

import (
	"context"
	"fmt"

	"github.com/lkral/courier/internal/domain"
	"github.com/lkral/courier/internal/repository"
)

// authenticate is the gate in front of every identity-scoped operation:
// resolve the acting user by username, then verify the supplied password
// against the stored hash. The order is fixed - existence first, so the
// hash comparison cost is never paid for nonexistent usernames - and no
// store mutation may happen before both checks pass.
func authenticate(ctx context.Context, users repository.UserRepository, username, password string) (*domain.User, error) {
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, fmt.Errorf("%w: %w: %q", ErrNotAuthenticated, domain.ErrUserNotFound, username)
		}
		return nil, err
	}

	if !user.VerifyPassword(password) {
		return nil, fmt.Errorf("%w: %w: user %q", ErrNotAuthenticated, domain.ErrInvalidCredentials, username)
	}

	return user, nil
}
