package config

import "errors"

var (
	// ErrInvalidConfig wraps values that fail Validate: malformed base or
	// login URLs, non-positive intervals, an empty session path or an
	// unknown view.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps failures reading the config file, the dotenv file
	// or PULSEBOARD_ environment variables.
	ErrLoadConfig = errors.New("load config failed")
)
