package store

import "errors"

var (
	// ErrNotFound is returned when an operation names an ID the store does not hold.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned by Insert when the ID is already present.
	ErrDuplicateKey = errors.New("duplicate record id")

	// ErrOutOfRange is returned when a mark falls outside [0,100].
	ErrOutOfRange = errors.New("mark out of range")
)
