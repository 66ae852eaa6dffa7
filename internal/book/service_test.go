package book_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"folio/internal/audit"
	auditmemory "folio/internal/audit/store/memory"
	"folio/internal/book"
	"folio/internal/book/store/memory"
	"folio/internal/platform/metrics"
	"folio/pkg/domainerrors"
	"folio/pkg/requestcontext"
)

type BookServiceSuite struct {
	suite.Suite
	store      *memory.InMemoryStore
	auditStore *auditmemory.InMemoryStore
	service    *book.Service
	ctx        context.Context
}

func TestBookServiceSuite(t *testing.T) {
	suite.Run(t, new(BookServiceSuite))
}

func (s *BookServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWith(prometheus.NewRegistry())

	s.store = memory.NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()

	audits := audit.NewService(s.auditStore, audit.DefaultRegistry(), logger, m)
	s.service = book.NewService(s.store, audits, logger)
	s.ctx = requestcontext.With(context.Background(), requestcontext.New("librarian-1", "admin"))
}

func (s *BookServiceSuite) create(title string) *book.Book {
	created, err := s.service.Create(s.ctx, book.CreateInput{
		Title:       title,
		Authors:     "Some Author",
		PublishedBy: "Some Press",
	})
	s.Require().NoError(err)
	return created
}

func (s *BookServiceSuite) TestCreate() {
	created := s.create("The Go Programming Language")

	s.NotEmpty(created.ID)
	s.Equal("librarian-1", created.CreatedBy)

	records, err := s.auditStore.Query(context.Background(), audit.Filter{Entity: "Book", Action: audit.ActionCreate})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(created.ID, records[0].EntityID)
	s.Equal("librarian-1", records[0].ActorID)
	s.Require().NotNil(records[0].Diff)
	s.Nil(records[0].Diff.Before)
	s.Equal("The Go Programming Language", records[0].Diff.After["title"])
}

func (s *BookServiceSuite) TestUpdate() {
	created := s.create("Draft Title")

	title := "Final Title"
	updated, err := s.service.Update(s.ctx, created.ID, book.UpdateInput{Title: &title})
	s.Require().NoError(err)
	s.Equal("Final Title", updated.Title)
	s.Equal("librarian-1", updated.UpdatedBy)

	records, err := s.auditStore.Query(context.Background(), audit.Filter{Entity: "Book", Action: audit.ActionUpdate})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Require().NotNil(records[0].Diff)
	// updatedBy flips from unset to the actor, so it changes alongside title;
	// updatedAt moves too but is excluded by policy.
	s.Equal([]string{"title", "updatedBy"}, records[0].Diff.FieldsChanged)
	s.Equal("Draft Title", records[0].Diff.Before["title"])
	s.Equal("Final Title", records[0].Diff.After["title"])
}

func (s *BookServiceSuite) TestUpdateTouchingOnlyExcludedFieldsChangesNothing() {
	created := s.create("Stable Title")

	// First empty update pins updatedBy to the actor; the second one only
	// moves updatedAt, which policy excludes from the diff.
	_, err := s.service.Update(s.ctx, created.ID, book.UpdateInput{})
	s.Require().NoError(err)
	_, err = s.service.Update(s.ctx, created.ID, book.UpdateInput{})
	s.Require().NoError(err)

	records, err := s.auditStore.Query(context.Background(), audit.Filter{Entity: "Book", Action: audit.ActionUpdate})
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Require().NotNil(records[0].Diff)
	s.Empty(records[0].Diff.FieldsChanged)
}

func (s *BookServiceSuite) TestDeleteAndRestore() {
	created := s.create("Ephemeral")

	s.Require().NoError(s.service.Delete(s.ctx, created.ID))

	s.Run("deleted book is not found", func() {
		_, err := s.service.Get(s.ctx, created.ID)
		s.Require().Error(err)
		s.True(domainerrors.Is(err, domainerrors.CodeNotFound))
	})

	s.Run("deleted book is excluded from listing", func() {
		page, err := s.service.List(s.ctx, 0, "")
		s.Require().NoError(err)
		s.Empty(page.Items)
	})

	s.Run("restore brings it back", func() {
		restored, err := s.service.Restore(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Nil(restored.DeletedAt)

		found, err := s.service.Get(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("Ephemeral", found.Title)
	})

	s.Run("restoring a live book is a conflict", func() {
		_, err := s.service.Restore(s.ctx, created.ID)
		s.Require().Error(err)
		s.True(domainerrors.Is(err, domainerrors.CodeConflict))
	})

	s.Run("delete and restore are both audited", func() {
		deletes, err := s.auditStore.Query(context.Background(), audit.Filter{Action: audit.ActionDelete})
		s.Require().NoError(err)
		s.Require().Len(deletes, 1)
		s.Require().NotNil(deletes[0].Diff)
		s.Nil(deletes[0].Diff.After)

		restores, err := s.auditStore.Query(context.Background(), audit.Filter{Action: audit.ActionRestore})
		s.Require().NoError(err)
		s.Require().Len(restores, 1)
		s.Require().NotNil(restores[0].Diff)
		s.Nil(restores[0].Diff.Before)
	})
}

func (s *BookServiceSuite) TestList() {
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		s.create(title)
	}

	var seen []string
	cursor := ""
	for range 3 {
		page, err := s.service.List(s.ctx, 2, cursor)
		s.Require().NoError(err)
		for _, item := range page.Items {
			seen = append(seen, item.ID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	s.Len(seen, 5)
	for i := 1; i < len(seen); i++ {
		s.Less(seen[i], seen[i-1], "ids must be strictly descending across pages")
	}

	s.Run("invalid cursor is rejected", func() {
		_, err := s.service.List(s.ctx, 2, "not-base64!!")
		s.Require().Error(err)
		s.True(domainerrors.Is(err, domainerrors.CodeInvalidCursor))
	})
}

type failingAuditStore struct{}

func (failingAuditStore) Append(context.Context, *audit.Record) error {
	return errors.New("append unavailable")
}

func (failingAuditStore) Query(context.Context, audit.Filter) ([]audit.Record, error) {
	return nil, errors.New("query unavailable")
}

func (failingAuditStore) FindByID(context.Context, string) (*audit.Record, error) {
	return nil, errors.New("find unavailable")
}

func (s *BookServiceSuite) TestMutationSucceedsWhenAuditAppendFails() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWith(prometheus.NewRegistry())
	audits := audit.NewService(failingAuditStore{}, audit.DefaultRegistry(), logger, m)
	service := book.NewService(s.store, audits, logger)

	created, err := service.Create(s.ctx, book.CreateInput{
		Title:       "Resilient",
		Authors:     "Some Author",
		PublishedBy: "Some Press",
	})
	s.Require().NoError(err)

	title := "Still Resilient"
	updated, err := service.Update(s.ctx, created.ID, book.UpdateInput{Title: &title})
	s.Require().NoError(err)
	s.Equal("Still Resilient", updated.Title)
}
