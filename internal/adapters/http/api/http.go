// Package api serves the web dashboard page and its supporting routes.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/pulseboard/internal/adapters/view/web"
	"github.com/okian/pulseboard/pkg/logger"
)

// Page is the display state the server renders.
type Page interface {
	Render(w io.Writer) error
	State() web.State
	Navigated() (string, bool)
}

// Logouter ends the dashboard session.
type Logouter interface {
	Logout(ctx context.Context)
}

// Server wires HTTP routes for the dashboard page.
type Server struct {
	healthHandler *HealthHandler
	pageHandler   *PageHandler
}

// NewServer creates a new page server with all handlers.
func NewServer(page Page, logout Logouter, opts ...Option) *Server {
	cfg := serverConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Named("page_server")
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		pageHandler:   NewPageHandler(page, logout, cfg.logger),
	}
}

type serverConfig struct {
	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		c.logger = l
	}
}

// Router returns the routes of the page server.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/state", MetricsMiddleware(s.pageHandler.HandleState, "state")).Methods(http.MethodGet)
	r.HandleFunc("/logout", MetricsMiddleware(s.pageHandler.HandleLogout, "logout")).Methods(http.MethodPost)
	r.HandleFunc("/", MetricsMiddleware(s.pageHandler.HandlePage, "page")).Methods(http.MethodGet)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
