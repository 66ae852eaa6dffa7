// Package postgres persists audit records in PostgreSQL. The table is
// append-only; this store issues INSERT and SELECT statements and nothing
// else.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"folio/internal/audit"
	"folio/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const recordColumns = `id, ts, entity, entity_id, action, actor_id, request_id,
	diff_before, diff_after, fields_changed, metadata`

// Append inserts one audit record and assigns its ID.
func (s *Store) Append(ctx context.Context, record *audit.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	diffBefore, diffAfter, fieldsChanged, err := marshalDiff(record.Diff)
	if err != nil {
		return err
	}

	var metadata []byte
	if record.Metadata != nil {
		metadata, err = json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_records (id, ts, entity, entity_id, action, actor_id, request_id,
			diff_before, diff_after, fields_changed, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.Timestamp,
		record.Entity,
		record.EntityID,
		string(record.Action),
		record.ActorID,
		record.RequestID,
		diffBefore,
		diffAfter,
		fieldsChanged,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Query returns matching records ordered by timestamp descending.
func (s *Store) Query(ctx context.Context, filter audit.Filter) ([]audit.Record, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.From != nil {
		conditions = append(conditions, "ts >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "ts <= "+arg(*filter.To))
	}
	if filter.Before != nil {
		conditions = append(conditions, "ts < "+arg(*filter.Before))
	}
	if filter.Entity != "" {
		conditions = append(conditions, "entity = "+arg(filter.Entity))
	}
	if filter.EntityID != "" {
		conditions = append(conditions, "entity_id = "+arg(filter.EntityID))
	}
	if filter.ActorID != "" {
		conditions = append(conditions, "actor_id = "+arg(filter.ActorID))
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = "+arg(string(filter.Action)))
	}
	if filter.RequestID != "" {
		conditions = append(conditions, "request_id = "+arg(filter.RequestID))
	}
	if len(filter.FieldsChanged) > 0 {
		// && is array overlap: at least one changed field in common.
		conditions = append(conditions, "fields_changed && "+arg(pq.Array(filter.FieldsChanged)))
	}

	query := "SELECT " + recordColumns + " FROM audit_records"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ts DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByID returns a single record, or sentinel.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*audit.Record, error) {
	query := "SELECT " + recordColumns + " FROM audit_records WHERE id = $1"

	row := s.db.QueryRowContext(ctx, query, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find audit record: %w", err)
	}
	return record, nil
}

func marshalDiff(diff *audit.Diff) (before, after []byte, fields any, err error) {
	if diff == nil {
		return nil, nil, nil, nil
	}
	if diff.Before != nil {
		before, err = json.Marshal(diff.Before)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal diff before: %w", err)
		}
	}
	if diff.After != nil {
		after, err = json.Marshal(diff.After)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal diff after: %w", err)
		}
	}
	if diff.FieldsChanged != nil {
		fields = pq.Array(diff.FieldsChanged)
	}
	return before, after, fields, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*audit.Record, error) {
	var (
		record        audit.Record
		action        string
		diffBefore    []byte
		diffAfter     []byte
		fieldsChanged pq.StringArray
		metadata      []byte
	)

	err := row.Scan(
		&record.ID,
		&record.Timestamp,
		&record.Entity,
		&record.EntityID,
		&action,
		&record.ActorID,
		&record.RequestID,
		&diffBefore,
		&diffAfter,
		&fieldsChanged,
		&metadata,
	)
	if err != nil {
		return nil, err
	}

	record.Action = audit.Action(action)

	if diffBefore != nil || diffAfter != nil || fieldsChanged != nil {
		diff := &audit.Diff{}
		if diffBefore != nil {
			if err := json.Unmarshal(diffBefore, &diff.Before); err != nil {
				return nil, fmt.Errorf("unmarshal diff before: %w", err)
			}
		}
		if diffAfter != nil {
			if err := json.Unmarshal(diffAfter, &diff.After); err != nil {
				return nil, fmt.Errorf("unmarshal diff after: %w", err)
			}
		}
		if fieldsChanged != nil {
			diff.FieldsChanged = []string(fieldsChanged)
		}
		record.Diff = diff
	}

	if metadata != nil {
		if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
		}
	}

	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	var records []audit.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
