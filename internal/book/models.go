// Package book owns the catalog: titles, their lifecycle, and the audit
// snapshots mutations produce.
package book

import "time"

// Book is a catalog entry. Deleted books stay in the store with DeletedAt set
// so they can be restored and so their audit history keeps a referent.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Authors     string     `json:"authors"`
	PublishedBy string     `json:"publishedBy"`
	CreatedBy   string     `json:"createdBy"`
	UpdatedBy   string     `json:"updatedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the book is soft-deleted.
func (b *Book) Deleted() bool {
	return b.DeletedAt != nil
}

// Snapshot returns the audit representation of the book.
func (b *Book) Snapshot() map[string]any {
	snapshot := map[string]any{
		"id":          b.ID,
		"title":       b.Title,
		"authors":     b.Authors,
		"publishedBy": b.PublishedBy,
		"createdBy":   b.CreatedBy,
		"createdAt":   b.CreatedAt,
		"updatedAt":   b.UpdatedAt,
	}
	if b.UpdatedBy != "" {
		snapshot["updatedBy"] = b.UpdatedBy
	}
	if b.DeletedAt != nil {
		snapshot["deletedAt"] = *b.DeletedAt
	}
	return snapshot
}
