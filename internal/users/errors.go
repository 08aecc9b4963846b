package users

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable is returned when the database cannot be opened.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrQueryFailed is returned when a statement fails at the driver level.
	ErrQueryFailed = errors.New("query failed")

	// ErrNotFound is returned when Find matches no row.
	ErrNotFound = errors.New("user not found")
)

// StoreError carries the failed operation, its error kind and the driver error.
type StoreError struct {
	Op   string // e.g. "find", "insert"
	Kind error  // one of ErrStoreUnavailable, ErrQueryFailed, ErrNotFound
	Err  error  // underlying driver error, may be nil
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the driver error to errors.Is/As.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewStoreError creates a StoreError.
func NewStoreError(op string, kind, err error) *StoreError {
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable reports whether err means the store could not be opened.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
