package backend

import "errors"

var (
	ErrNotFound  = errors.New("row not found")
	ErrDenied    = errors.New("write denied")
	ErrNoSession = errors.New("no active session")
)
