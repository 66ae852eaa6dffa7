package book

import "context"

// ListFilter narrows a catalog listing. BeforeID is the exclusive id-descending
// cursor position; Limit caps the page size and must be positive.
type ListFilter struct {
	BeforeID string
	Limit    int
}

// Store persists books. FindByID returns soft-deleted books too; visibility is
// the service's concern. List returns only live books, newest id first.
type Store interface {
	Create(ctx context.Context, book *Book) error
	FindByID(ctx context.Context, id string) (*Book, error)
	Update(ctx context.Context, book *Book) error
	List(ctx context.Context, filter ListFilter) ([]Book, error)
}
