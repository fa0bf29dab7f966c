package app

import "errors"

// Sentinel kinds for controller errors.
var (
	ErrNoSession = errors.New("no session credential")
)
