// Package memory provides an in-memory book store for unit tests and local
// development without Postgres.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"folio/internal/book"
	"folio/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	books map[string]book.Book
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{books: make(map[string]book.Book)}
}

func (s *InMemoryStore) Create(_ context.Context, b *book.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, exists := s.books[b.ID]; exists {
		return sentinel.ErrConflict
	}
	s.books[b.ID] = *b
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := b
	return &found, nil
}

func (s *InMemoryStore) Update(_ context.Context, b *book.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[b.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.books[b.ID] = *b
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter book.ListFilter) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []book.Book
	for _, b := range s.books {
		if b.Deleted() {
			continue
		}
		if filter.BeforeID != "" && b.ID >= filter.BeforeID {
			continue
		}
		result = append(result, b)
	}

	slices.SortFunc(result, func(a, b book.Book) int {
		return strings.Compare(b.ID, a.ID)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}
