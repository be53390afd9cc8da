package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"printsettings/internal/user/models"
	"printsettings/pkg/platform/sentinel"
)

// Error Contract:
// All store implementations follow this pattern:
// - FindByID/FindByEmail return sentinel.ErrNotFound when no record matches,
//   including ids the backend could never have issued
// - Insert returns sentinel.ErrConflict when the email is taken
// - Replace/Delete report whether a record was modified/removed; errors are
//   reserved for infrastructure failures and conflicts

// InMemoryUserStore keeps users in a map for tests and local development.
// Email uniqueness is checked and the insert performed under one write lock.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
}

// NewInMemory constructs an empty in-memory user store.
func NewInMemory() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *InMemoryUserStore) Insert(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return nil, fmt.Errorf("insert user: %w", sentinel.ErrConflict)
	}
	stored := models.User{
		ID:             uuid.NewString(),
		Email:          user.Email,
		PasswordDigest: user.PasswordDigest,
	}
	s.users[stored.ID] = stored
	s.byEmail[stored.Email] = stored.ID
	return &stored, nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[email]; ok {
		user := s.users[id]
		return &user, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) Replace(_ context.Context, user *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return false, nil
	}
	if owner, taken := s.byEmail[user.Email]; taken && owner != user.ID {
		return false, fmt.Errorf("replace user: %w", sentinel.ErrConflict)
	}
	if current == *user {
		return false, nil
	}
	delete(s.byEmail, current.Email)
	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return true, nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return false, nil
	}
	delete(s.users, id)
	delete(s.byEmail, user.Email)
	return true, nil
}

func (s *InMemoryUserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
