package users

import "context"

// Store persists users. Implementations own their connection; callers get one
// injected rather than reaching for a package-level handle.
type Store interface {
	// CreateTable ensures the users table exists. Calling it again is a no-op.
	CreateTable(ctx context.Context) error

	// Find returns the user with the given id.
	// Returns a StoreError matching ErrNotFound when no row has that id.
	Find(ctx context.Context, id int64) (*User, error)

	// All returns every user ordered by id.
	All(ctx context.Context) ([]*User, error)

	// Insert writes u as a new row, sets u.ID to the assigned id and returns u.
	// Inserting the same value twice creates two rows.
	Insert(ctx context.Context, u *User) (*User, error)
}
