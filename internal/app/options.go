package app

import (
	"time"

	"github.com/okian/pulseboard/internal/adapters/backend"
	"github.com/okian/pulseboard/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithBaseURL sets the backend API root.
func WithBaseURL(u string) Option {
	return func(c *Controller) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithLoginURL sets the navigation target used when the session ends.
func WithLoginURL(u string) Option {
	return func(c *Controller) {
		if u != "" {
			c.loginURL = u
		}
	}
}

// WithRefreshInterval sets the refresh cycle period.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClientOptions passes extra options to the backend client.
func WithClientOptions(opts ...backend.Option) Option {
	return func(c *Controller) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}
