// Package memory provides an in-memory user store for unit tests and local
// development without Postgres.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"folio/internal/auth"
	"folio/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]auth.User // keyed by ID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]auth.User)}
}

func (s *InMemoryStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Name, user.Name) {
			return sentinel.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *InMemoryStore) FindByName(_ context.Context, name string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Name == name {
			found := user
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := user
	return &found, nil
}
