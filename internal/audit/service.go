package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/platform/metrics"
	"folio/pkg/requestcontext"
)

// Service is the audit orchestrator. Mutation handlers hand it before/after
// snapshots; it attributes them to the current request, applies policy,
// computes the diff, and appends a record. The read path translates external
// filters into store queries and manages cursor pagination.
type Service struct {
	store    Store
	policies Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService wires the audit orchestrator.
func NewService(store Store, policies Registry, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		policies: policies,
		logger:   logger,
		metrics:  m,
	}
}

// Entry is what a mutation handler knows about the change it just made.
// Before and After may each be nil: create and login supply no Before,
// delete supplies no After, login supplies neither.
type Entry struct {
	Entity   string
	EntityID string
	Action   Action
	Before   Snapshot
	After    Snapshot
	Metadata map[string]any
}

// RecordMutation appends an audit record for a completed mutation. It is
// fire-and-forget from the caller's perspective: every failure in here is
// absorbed and logged, because the audit trail is observability, not a
// transactional ledger. The business operation that triggered it must never
// fail on account of its audit record.
func (s *Service) RecordMutation(ctx context.Context, entry Entry) {
	rc, ok := requestcontext.From(ctx)
	if !ok {
		// No request scope means no attributable actor or correlation ID.
		s.logger.DebugContext(ctx, "no request context for audit record",
			"entity", entry.Entity,
			"action", entry.Action,
		)
		s.metrics.AuditRecordsSkipped.WithLabelValues("no_context").Inc()
		return
	}

	policy, ok := s.policies.Lookup(entry.Entity)
	if !ok || !policy.Tracked {
		s.metrics.AuditRecordsSkipped.WithLabelValues("untracked").Inc()
		return
	}

	actorID := rc.ActorID
	if actorID == "" {
		actorID = SystemActor
	}

	record := &Record{
		Timestamp: requestcontext.Now(ctx),
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Action:    entry.Action,
		ActorID:   actorID,
		RequestID: rc.RequestID,
		Diff:      computeDiff(entry.Before, entry.After, policy),
		Metadata:  entry.Metadata,
	}

	if err := s.store.Append(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to append audit record",
			"error", err,
			"entity", entry.Entity,
			"entity_id", entry.EntityID,
			"action", entry.Action,
			"request_id", rc.RequestID,
		)
		s.metrics.AuditWriteFailures.Inc()
		return
	}

	s.metrics.AuditRecordsWritten.WithLabelValues(string(entry.Action)).Inc()
	s.logger.InfoContext(ctx, "audit record written",
		"entity", entry.Entity,
		"entity_id", entry.EntityID,
		"action", entry.Action,
		"actor_id", actorID,
		"request_id", rc.RequestID,
	)
}

// Pagination bounds for the query surface.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query carries the external filter surface for the audit read path. Cursor
// is the opaque token from a previous Page.
type Query struct {
	From          *time.Time
	To            *time.Time
	Entity        string
	EntityID      string
	ActorID       string
	Action        Action
	RequestID     string
	FieldsChanged []string
	Limit         int
	Cursor        string
}

// Page is one slice of the audit stream, most recent first. NextCursor is
// empty on the final page.
type Page struct {
	Items      []Record `json:"items"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// Logs returns a page of audit records matching q. The only caller-visible
// error class is ErrInvalidCursor; store failures bubble up for the transport
// layer to translate.
func (s *Service) Logs(ctx context.Context, q Query) (*Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := Filter{
		From:          q.From,
		To:            q.To,
		Entity:        q.Entity,
		EntityID:      q.EntityID,
		ActorID:       q.ActorID,
		Action:        q.Action,
		RequestID:     q.RequestID,
		FieldsChanged: q.FieldsChanged,
		// Fetch one extra record to learn whether another page exists.
		Limit: limit + 1,
	}

	if q.Cursor != "" {
		before, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		filter.Before = &before
	}

	items, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}

	page := &Page{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = encodeCursor(page.Items[limit-1].Timestamp)
	}
	if page.Items == nil {
		page.Items = []Record{}
	}
	return page, nil
}

// Get returns a single audit record by ID.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.store.FindByID(ctx, id)
}
