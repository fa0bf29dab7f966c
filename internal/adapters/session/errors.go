package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrNotFound     = errors.New("session value not found")
	ErrSessionStore = errors.New("session store failed")
)
