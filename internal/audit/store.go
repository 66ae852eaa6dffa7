package audit

import (
	"context"
	"time"
)

// Store persists audit records. Implementations must be append-only: the
// interface deliberately exposes no update or delete operation, and Append
// must be atomic per record under concurrent writers.
type Store interface {
	// Append persists one record and assigns its ID.
	Append(ctx context.Context, record *Record) error
	// Query returns records matching the filter, ordered by timestamp
	// descending, at most filter.Limit of them.
	Query(ctx context.Context, filter Filter) ([]Record, error)
	// FindByID returns a single record, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*Record, error)
}

// Filter narrows a query. All zero-valued fields are ignored; set fields are
// AND-combined.
type Filter struct {
	// From and To bound the timestamp inclusively on both ends.
	From *time.Time
	To   *time.Time
	// Before is the exclusive upper bound derived from a pagination cursor.
	Before *time.Time

	Entity    string
	EntityID  string
	ActorID   string
	Action    Action
	RequestID string

	// FieldsChanged matches records whose diff touched at least one of the
	// given fields.
	FieldsChanged []string

	// Limit caps the result size. The service clamps it before the store
	// sees it; stores treat 0 as "no limit".
	Limit int
}
