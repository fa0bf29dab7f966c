// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - New builds a Config with defaults; Load layers file, .env and env on top.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Supported view kinds.
const (
	ViewWeb      = "web"
	ViewTerminal = "terminal"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, receives a copy of every log record.
	LogFile string `koanf:"log_file"`

	// BaseURL is the backend API root, e.g. "http://localhost:5000/api".
	BaseURL string `koanf:"base_url"`

	// LoginURL is where the client navigates when the session is gone.
	LoginURL string `koanf:"login_url"`

	// RefreshIntervalMS is the refresh cycle period.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// RequestTimeoutMS bounds each backend request; 0 disables the timeout.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// SessionPath is the sqlite file holding the session credential.
	SessionPath string `koanf:"session_path"`

	// View selects the display: "web" or "terminal".
	View string `koanf:"view"`

	// Addr is the listen address of the web view page server.
	Addr string `koanf:"addr"`

	// OpenBrowser opens the dashboard and login pages with the system browser.
	OpenBrowser bool `koanf:"open_browser"`

	// EnvFile is an optional dotenv file loaded before environment variables.
	EnvFile string `koanf:"env_file"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		BaseURL:           "http://localhost:5000/api",
		LoginURL:          "http://localhost:5000/",
		RefreshIntervalMS: 30_000,
		RequestTimeoutMS:  0,
		SessionPath:       defaultSessionPath(),
		View:              ViewWeb,
		Addr:              "127.0.0.1:9090",
		EnvFile:           ".env",
	}
}

// RefreshInterval returns the refresh period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".pulseboard", "session.db")
	}
	return filepath.Join(home, ".pulseboard", "session.db")
}
