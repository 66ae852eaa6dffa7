package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"folio/internal/audit"
	"folio/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) newRecord(entityID string, at time.Time) *audit.Record {
	return &audit.Record{
		Timestamp: at,
		Entity:    "Book",
		EntityID:  entityID,
		Action:    audit.ActionUpdate,
		ActorID:   "u1",
		RequestID: "req-1",
		Diff: &audit.Diff{
			Before:        audit.Snapshot{"title": "A"},
			After:         audit.Snapshot{"title": "B"},
			FieldsChanged: []string{"title"},
		},
	}
}

func (s *MemoryStoreSuite) TestAppendAssignsID() {
	record := s.newRecord("b1", time.Now())
	s.Require().NoError(s.store.Append(s.ctx, record))
	s.NotEmpty(record.ID)

	found, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal("b1", found.EntityID)
}

func (s *MemoryStoreSuite) TestFindByIDUnknown() {
	_, err := s.store.FindByID(s.ctx, "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestQueryOrdersDescending() {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"b1", "b2", "b3"} {
		s.Require().NoError(s.store.Append(s.ctx, s.newRecord(id, base.Add(time.Duration(i)*time.Hour))))
	}

	records, err := s.store.Query(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("b3", records[0].EntityID)
	s.Equal("b1", records[2].EntityID)
}

func (s *MemoryStoreSuite) TestQueryFilters() {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	first := s.newRecord("b1", base)
	second := s.newRecord("b2", base.Add(time.Hour))
	second.ActorID = "u2"
	second.Action = audit.ActionDelete
	second.Diff = &audit.Diff{
		Before:        audit.Snapshot{"authors": "X"},
		FieldsChanged: nil,
	}
	s.Require().NoError(s.store.Append(s.ctx, first))
	s.Require().NoError(s.store.Append(s.ctx, second))

	s.Run("by entity id", func() {
		records, err := s.store.Query(s.ctx, audit.Filter{EntityID: "b2"})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("b2", records[0].EntityID)
	})

	s.Run("by action", func() {
		records, err := s.store.Query(s.ctx, audit.Filter{Action: audit.ActionDelete})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("b2", records[0].EntityID)
	})

	s.Run("by fields changed intersection", func() {
		records, err := s.store.Query(s.ctx, audit.Filter{FieldsChanged: []string{"title"}})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("b1", records[0].EntityID)
	})

	s.Run("fields filter skips records without matching diff", func() {
		records, err := s.store.Query(s.ctx, audit.Filter{FieldsChanged: []string{"isbn"}})
		s.Require().NoError(err)
		s.Empty(records)
	})

	s.Run("before bound is exclusive", func() {
		cutoff := base.Add(time.Hour)
		records, err := s.store.Query(s.ctx, audit.Filter{Before: &cutoff})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("b1", records[0].EntityID)
	})

	s.Run("from and to are inclusive", func() {
		from := base
		to := base.Add(time.Hour)
		records, err := s.store.Query(s.ctx, audit.Filter{From: &from, To: &to})
		s.Require().NoError(err)
		s.Len(records, 2)
	})

	s.Run("limit caps results", func() {
		records, err := s.store.Query(s.ctx, audit.Filter{Limit: 1})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("b2", records[0].EntityID, "limit keeps the most recent")
	})
}

func (s *MemoryStoreSuite) TestConcurrentAppends() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.Append(s.ctx, s.newRecord("b", time.Now()))
		}()
	}
	wg.Wait()

	records, err := s.store.Query(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Len(records, 50)
}
