package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lkral/courier/internal/domain"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users      map[string]*domain.User
	nextID     int64
	referenced map[int64]bool // ids that messages still reference
	upsertErr  error
	getErr     error
	deleteErr  error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:      make(map[string]*domain.User),
		referenced: make(map[int64]bool),
		nextID:     1,
	}
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if existing, ok := m.users[user.Username]; ok {
		existing.PasswordHash = user.PasswordHash
		user.ID = existing.ID
		return nil
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*domain.User
	for _, u := range m.users {
		copied := *u
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	_, ok := m.users[username]
	return ok, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.referenced[id] {
		return fmt.Errorf("%w: user %d is referenced by messages", domain.ErrIntegrityViolation, id)
	}
	for name, u := range m.users {
		if u.ID == id {
			delete(m.users, name)
			return nil
		}
	}
	// deleting a nonexistent id is a no-op
	return nil
}

// MockMessageRepository is a mock implementation of repository.MessageRepository.
type MockMessageRepository struct {
	msgs      []*domain.Message
	nextID    int64
	users     *MockUserRepository // for foreign-key behavior
	createErr error
}

func NewMockMessageRepository(users *MockUserRepository) *MockMessageRepository {
	return &MockMessageRepository{
		users:  users,
		nextID: 1,
	}
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.users != nil {
		if _, err := m.users.GetByID(ctx, msg.FromID); err != nil {
			return fmt.Errorf("%w: message from %d to %d references a nonexistent user",
				domain.ErrIntegrityViolation, msg.FromID, msg.ToID)
		}
		if _, err := m.users.GetByID(ctx, msg.ToID); err != nil {
			return fmt.Errorf("%w: message from %d to %d references a nonexistent user",
				domain.ErrIntegrityViolation, msg.FromID, msg.ToID)
		}
		m.users.referenced[msg.FromID] = true
		m.users.referenced[msg.ToID] = true
	}
	msg.ID = m.nextID
	m.nextID++
	msg.CreationDate = time.Now().UTC()
	stored := *msg
	m.msgs = append(m.msgs, &stored)
	return nil
}

func (m *MockMessageRepository) ListByRecipient(ctx context.Context, userID int64) ([]*domain.Message, error) {
	var result []*domain.Message
	for _, msg := range m.msgs {
		if msg.ToID == userID {
			copied := *msg
			result = append(result, &copied)
		}
	}
	return result, nil
}
