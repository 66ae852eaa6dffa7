package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"folio/internal/audit"
	"folio/pkg/domainerrors"
	"folio/pkg/platform/sentinel"
	"folio/pkg/requestcontext"
)

const (
	// DefaultLimit is the page size when the client does not ask for one.
	DefaultLimit = 20
	// MaxLimit caps the page size regardless of what the client asks for.
	MaxLimit = 100
)

// entityType is the audit entity name for books.
const entityType = "Book"

// Service implements catalog operations and emits an audit record for every
// mutation. Audit failures never fail the mutation itself.
type Service struct {
	store  Store
	audits *audit.Service
	logger *slog.Logger
}

func NewService(store Store, audits *audit.Service, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		audits: audits,
		logger: logger,
	}
}

// CreateInput carries the client-supplied fields for a new book.
type CreateInput struct {
	Title       string
	Authors     string
	PublishedBy string
}

// Create stores a new book attributed to the request actor.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Book, error) {
	now := requestcontext.Now(ctx)
	book := &Book{
		Title:       input.Title,
		Authors:     input.Authors,
		PublishedBy: input.PublishedBy,
		CreatedBy:   requestcontext.ActorID(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.audits.RecordMutation(ctx, audit.Entry{
		Entity:   entityType,
		EntityID: book.ID,
		Action:   audit.ActionCreate,
		After:    book.Snapshot(),
	})

	s.logger.InfoContext(ctx, "book created",
		"book_id", book.ID,
		"title", book.Title,
		"created_by", book.CreatedBy,
	)
	return book, nil
}

// Get returns a live book. Soft-deleted books are not found.
func (s *Service) Get(ctx context.Context, id string) (*Book, error) {
	return s.findLive(ctx, id)
}

// UpdateInput carries partial updates; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Authors     *string
	PublishedBy *string
}

// Update applies a partial update and records a before/after audit diff.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Book, error) {
	book, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	before := book.Snapshot()

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Authors != nil {
		book.Authors = *input.Authors
	}
	if input.PublishedBy != nil {
		book.PublishedBy = *input.PublishedBy
	}
	book.UpdatedBy = requestcontext.ActorID(ctx)
	book.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.audits.RecordMutation(ctx, audit.Entry{
		Entity:   entityType,
		EntityID: book.ID,
		Action:   audit.ActionUpdate,
		Before:   before,
		After:    book.Snapshot(),
	})

	s.logger.InfoContext(ctx, "book updated",
		"book_id", book.ID,
		"updated_by", book.UpdatedBy,
	)
	return book, nil
}

// Delete soft-deletes a book. The record stays in the store so restore and
// the audit trail keep working.
func (s *Service) Delete(ctx context.Context, id string) error {
	book, err := s.findLive(ctx, id)
	if err != nil {
		return err
	}

	before := book.Snapshot()

	now := requestcontext.Now(ctx)
	book.DeletedAt = &now
	book.UpdatedBy = requestcontext.ActorID(ctx)
	book.UpdatedAt = now

	if err := s.store.Update(ctx, book); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.audits.RecordMutation(ctx, audit.Entry{
		Entity:   entityType,
		EntityID: book.ID,
		Action:   audit.ActionDelete,
		Before:   before,
	})

	s.logger.InfoContext(ctx, "book deleted",
		"book_id", book.ID,
		"deleted_by", book.UpdatedBy,
	)
	return nil
}

// Restore brings a soft-deleted book back. Restoring a live book is a
// conflict.
func (s *Service) Restore(ctx context.Context, id string) (*Book, error) {
	book, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "book not found")
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	if !book.Deleted() {
		return nil, domainerrors.New(domainerrors.CodeConflict, "book is not deleted")
	}

	book.DeletedAt = nil
	book.UpdatedBy = requestcontext.ActorID(ctx)
	book.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("restore book: %w", err)
	}

	s.audits.RecordMutation(ctx, audit.Entry{
		Entity:   entityType,
		EntityID: book.ID,
		Action:   audit.ActionRestore,
		After:    book.Snapshot(),
	})

	s.logger.InfoContext(ctx, "book restored",
		"book_id", book.ID,
		"restored_by", book.UpdatedBy,
	)
	return book, nil
}

// Page is one id-descending slice of the catalog.
type Page struct {
	Items      []Book `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// List returns live books newest first, paginated by opaque cursor.
func (s *Service) List(ctx context.Context, limit int, cursor string) (*Page, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := ListFilter{Limit: limit + 1}
	if cursor != "" {
		beforeID, err := decodeCursor(cursor)
		if err != nil {
			return nil, domainerrors.Wrap(domainerrors.CodeInvalidCursor, "invalid cursor format", err)
		}
		filter.BeforeID = beforeID
	}

	books, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	page := &Page{Items: books}
	if len(books) > limit {
		page.Items = books[:limit]
		page.NextCursor = encodeCursor(page.Items[len(page.Items)-1].ID)
	}
	if page.Items == nil {
		page.Items = []Book{}
	}
	return page, nil
}

func (s *Service) findLive(ctx context.Context, id string) (*Book, error) {
	book, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "book not found")
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	if book.Deleted() {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "book not found")
	}
	return book, nil
}
