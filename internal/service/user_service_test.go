package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/domain"
	"github.com/lkral/courier/internal/pkg/crypto"
)

func seedUser(t *testing.T, repo *MockUserRepository, username, password string) *domain.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{ID: domain.SentinelID, Username: username, PasswordHash: hash}
	if err := repo.Upsert(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateAccountInput
		wantErr   error
		setupRepo func(t *testing.T, m *MockUserRepository)
	}{
		{
			name:    "success",
			input:   CreateAccountInput{Username: "alice", Password: "pw12345678"},
			wantErr: nil,
		},
		{
			name:    "password too short",
			input:   CreateAccountInput{Username: "alice", Password: "short"},
			wantErr: ErrInvalidPassword,
		},
		{
			name:    "empty username",
			input:   CreateAccountInput{Username: "", Password: "pw12345678"},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "already exists",
			input:   CreateAccountInput{Username: "alice", Password: "pw12345678"},
			wantErr: domain.ErrUserAlreadyExists,
			setupRepo: func(t *testing.T, m *MockUserRepository) {
				seedUser(t, m, "alice", "otherpw12345")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(t, repo)
			}

			svc := NewUserService(repo, zerolog.Nop())
			user, err := svc.Create(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !user.Persisted() {
				t.Error("expected assigned id after create")
			}
			if user.PasswordHash == tt.input.Password {
				t.Error("plaintext password must never be stored")
			}
			if !user.VerifyPassword(tt.input.Password) {
				t.Error("stored hash does not verify the original password")
			}
		})
	}
}

func TestUserService_Edit_ReplacesCredential(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateAccountInput{Username: "martin", Password: "martinpw1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Edit(ctx, "martin", "somenewpwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Upsert keyed on username: still exactly one row, same id, new hash.
	if second.ID != first.ID {
		t.Errorf("expected id %d after edit, got %d", first.ID, second.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("expected exactly one row, got %d", len(repo.users))
	}

	stored, err := repo.GetByUsername(ctx, "martin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.VerifyPassword("somenewpwd") {
		t.Error("stored credential does not match the second upsert")
	}
	if stored.VerifyPassword("martinpw1") {
		t.Error("old credential still verifies after edit")
	}
}

func TestUserService_Edit_CreatesMissingUser(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewUserService(repo, zerolog.Nop())

	user, err := svc.Edit(context.Background(), "pavel", "pavelpw12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.Persisted() {
		t.Error("expected upsert to assign an id")
	}
}

func TestUserService_Authenticate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"success", "alice", "pw12345678", nil},
		{"unknown user", "nobody", "pw12345678", domain.ErrUserNotFound},
		{"wrong password", "alice", "wrongpw123", domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			seedUser(t, repo, "alice", "pw12345678")
			svc := NewUserService(repo, zerolog.Nop())

			user, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Username != tt.username {
				t.Errorf("expected user %s, got %s", tt.username, user.Username)
			}
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := NewMockUserRepository()
		seedUser(t, repo, "alice", "pw12345678")
		svc := NewUserService(repo, zerolog.Nop())
		ctx := context.Background()

		if err := svc.Delete(ctx, "alice", "pw12345678"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := repo.GetByUsername(ctx, "alice"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("expected user gone, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := NewMockUserRepository()
		svc := NewUserService(repo, zerolog.Nop())

		err := svc.Delete(context.Background(), "nobody", "pw12345678")
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("bad credentials abort before mutation", func(t *testing.T) {
		repo := NewMockUserRepository()
		seedUser(t, repo, "alice", "pw12345678")
		svc := NewUserService(repo, zerolog.Nop())
		ctx := context.Background()

		err := svc.Delete(ctx, "alice", "wrongpw123")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := repo.GetByUsername(ctx, "alice"); err != nil {
			t.Errorf("user must still exist after failed gate: %v", err)
		}
	})

	t.Run("referenced by messages", func(t *testing.T) {
		repo := NewMockUserRepository()
		user := seedUser(t, repo, "alice", "pw12345678")
		repo.referenced[user.ID] = true
		svc := NewUserService(repo, zerolog.Nop())

		err := svc.Delete(context.Background(), "alice", "pw12345678")
		if !errors.Is(err, domain.ErrIntegrityViolation) {
			t.Errorf("expected ErrIntegrityViolation, got %v", err)
		}
	})
}
