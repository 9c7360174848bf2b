package dataset

import "errors"

var (
	// ErrConfirmationRequired indicates the operation needs explicit user confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrInvalidMode indicates an unknown import mode.
	ErrInvalidMode = errors.New("invalid import mode")
)
