package history

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSameSession     = errors.New("cannot compare a session with itself")
)
