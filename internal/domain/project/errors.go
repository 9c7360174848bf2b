package project

import "errors"

var (
	// ErrProjectNotFound indicates the record doesn't exist.
	ErrProjectNotFound = errors.New("project record not found")
	// ErrInvalidInput indicates invalid project record input.
	ErrInvalidInput = errors.New("invalid project record input")
)
