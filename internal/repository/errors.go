package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	// ErrCorruptRecord marks a stored payload that no longer parses as valid
	// data. Loaders return it together with the default value.
	ErrCorruptRecord = errors.New("corrupt record")
)
