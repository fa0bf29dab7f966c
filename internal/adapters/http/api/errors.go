package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrServe  = errors.New("page server failed")
	ErrRender = errors.New("render failed")
)
