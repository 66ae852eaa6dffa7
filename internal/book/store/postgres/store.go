// Package postgres persists books in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"folio/internal/book"
	"folio/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const bookColumns = "id, title, authors, published_by, created_by, updated_by, created_at, updated_at, deleted_at"

func (s *Store) Create(ctx context.Context, b *book.Book) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID,
		b.Title,
		b.Authors,
		b.PublishedBy,
		b.CreatedBy,
		nullString(b.UpdatedBy),
		b.CreatedAt,
		b.UpdatedAt,
		b.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return b, nil
}

func (s *Store) Update(ctx context.Context, b *book.Book) error {
	query := `
		UPDATE books
		SET title = $2, authors = $3, published_by = $4, updated_by = $5,
			updated_at = $6, deleted_at = $7
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		b.ID,
		b.Title,
		b.Authors,
		b.PublishedBy,
		nullString(b.UpdatedBy),
		b.UpdatedAt,
		b.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update book rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter book.ListFilter) ([]book.Book, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + bookColumns + ` FROM books WHERE deleted_at IS NULL`)

	var args []any
	if filter.BeforeID != "" {
		args = append(args, filter.BeforeID)
		fmt.Fprintf(&sb, " AND id < $%d", len(args))
	}
	sb.WriteString(" ORDER BY id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*book.Book, error) {
	var (
		b         book.Book
		updatedBy sql.NullString
		deletedAt sql.NullTime
	)
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Authors,
		&b.PublishedBy,
		&b.CreatedBy,
		&updatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if updatedBy.Valid {
		b.UpdatedBy = updatedBy.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		b.DeletedAt = &t
	}
	return &b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
