package backend

import "errors"

// Sentinel kinds for backend errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrStatus       = errors.New("response status is not success")
	ErrDecode       = errors.New("response body is not valid JSON")
	ErrLogin        = errors.New("login failed")
)
