// Package service provides business logic services for Courier.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/domain"
	"github.com/lkral/courier/internal/repository"
)

// UserService handles account management operations.
type UserService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// CreateAccountInput contains the data needed to create a new account.
type CreateAccountInput struct {
	Username string
	Password string
}

// Create creates a new user account.
// An existing username is an error on this path; only Edit replaces
// credentials.
func (s *UserService) Create(ctx context.Context, input CreateAccountInput) (*domain.User, error) {
	if err := validateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: username %q", domain.ErrUserAlreadyExists, input.Username)
	}

	user, err := domain.NewUser(input.Username, input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("account created")

	return user, nil
}

// Edit replaces the account's credential: the new password is hashed and
// upserted under the same username. The username itself is immutable.
func (s *UserService) Edit(ctx context.Context, username, newPassword string) (*domain.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	user, err := domain.NewUser(username, newPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to edit user")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("account credential updated")

	return user, nil
}

// Authenticate runs the authentication gate and returns the acting user.
// Absent user and bad password surface as distinct error kinds; public
// surfaces are expected to collapse them before responding.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := authenticate(ctx, s.userRepo, username, password)
	if err != nil {
		s.logger.Debug().Str("username", username).Msg("authentication failed")
		return nil, err
	}
	return user, nil
}

// Delete removes the account after the gate passes. The entity's id is
// reset to the sentinel so the in-memory handle reads as unpersisted.
// A user still referenced by messages cannot be deleted; the store's
// foreign-key constraint surfaces that as an integrity violation.
func (s *UserService) Delete(ctx context.Context, username, password string) error {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to delete user")
		return err
	}

	user.ID = domain.SentinelID

	s.logger.Info().Str("username", username).Msg("account deleted")
	return nil
}

// GetByUsername retrieves a single account.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, err
	}
	return users, nil
}

func validateUsername(username string) error {
	if len(username) < 1 || len(username) > 255 {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}
