package store

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist, or exists
	// but belongs to another admin.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an admin email is already taken.
	ErrDuplicateEmail = errors.New("duplicate email")
)
