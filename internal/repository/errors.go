package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the backend refuses an operation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTransient is returned for network or availability failures that may succeed on retry
	ErrTransient = errors.New("transient backend failure")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
