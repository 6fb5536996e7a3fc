package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrUsernameTaken is returned by SetUsername when the store's
	// uniqueness constraint rejects the write.
	ErrUsernameTaken = errors.New("username already taken")
)
