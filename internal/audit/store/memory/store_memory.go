// Package memory provides an in-memory audit store for unit tests and local
// development without Postgres.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"folio/internal/audit"
	"folio/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records []audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Clear removes all records. Use between tests to ensure isolation.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

func (s *InMemoryStore) Append(_ context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	s.records = append(s.records, *record)
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, filter audit.Filter) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Record
	for _, record := range s.records {
		if matches(record, filter) {
			matched = append(matched, record)
		}
	}

	slices.SortFunc(matched, func(a, b audit.Record) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.ID == id {
			found := record
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func matches(record audit.Record, filter audit.Filter) bool {
	if filter.From != nil && record.Timestamp.Before(*filter.From) {
		return false
	}
	if filter.To != nil && record.Timestamp.After(*filter.To) {
		return false
	}
	if filter.Before != nil && !record.Timestamp.Before(*filter.Before) {
		return false
	}
	if filter.Entity != "" && record.Entity != filter.Entity {
		return false
	}
	if filter.EntityID != "" && record.EntityID != filter.EntityID {
		return false
	}
	if filter.ActorID != "" && record.ActorID != filter.ActorID {
		return false
	}
	if filter.Action != "" && record.Action != filter.Action {
		return false
	}
	if filter.RequestID != "" && record.RequestID != filter.RequestID {
		return false
	}
	if len(filter.FieldsChanged) > 0 {
		if record.Diff == nil || !intersects(record.Diff.FieldsChanged, filter.FieldsChanged) {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	for _, field := range a {
		if slices.Contains(b, field) {
			return true
		}
	}
	return false
}
