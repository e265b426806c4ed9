package model

import "errors"

// Storage-level errors shared by every repository implementation.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)
