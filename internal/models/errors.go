package models

import "errors"

// Store-level outcomes shared by the repositories and their callers.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
