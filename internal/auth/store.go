package auth

import "context"

// UserStore persists user accounts.
type UserStore interface {
	// Create inserts a new user. Returns sentinel.ErrConflict when the name
	// is already taken.
	Create(ctx context.Context, user *User) error
	// FindByName returns a user by exact name, or sentinel.ErrNotFound.
	FindByName(ctx context.Context, name string) (*User, error)
	// FindByID returns a user by ID, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*User, error)
}
