package persistence

import "errors"

// Common persistence errors
var (
	ErrEmptyKey       = errors.New("empty key")
	ErrInvalidTableID = errors.New("invalid table name")
)
