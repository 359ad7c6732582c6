package database

import "errors"

var (
	// ErrStorage marks failures of the backing store. Repositories wrap
	// driver errors with it so callers can tell them apart from validation.
	ErrStorage = errors.New("storage failure")

	// ErrNotFound is returned by lookups that require an existing row.
	ErrNotFound = errors.New("not found")
)
