package documents

import "errors"

var (
	ErrNotFound     = errors.New("upload record not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicatePath is returned when a record for the same storage key exists.
	ErrDuplicatePath = errors.New("upload record path already exists")
	// ErrSigningUnsupported is returned when the object store cannot sign URLs.
	ErrSigningUnsupported = errors.New("object store cannot sign urls")
)
