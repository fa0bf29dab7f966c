// Package testbackend implements the health-log REST API over an in-memory
// log. It backs integration tests and the mock-backend command.
package testbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/pkg/logger"
)

const (
	statusError          = "error"
	tokenExpirationHours = 24
	defaultLogEntries    = 200
	defaultUsers         = 5
)

// DefaultAccounts are the credentials accepted by /auth/login.
var DefaultAccounts = map[string]string{
	"admin":  "admin123",
	"user01": "password1",
	"user02": "password2",
	"user03": "password3",
}

// Backend serves the health-log API.
type Backend struct {
	mu       sync.RWMutex
	logs     []LogEntry
	accounts map[string]string
	tokens   map[string]string
	delays   map[string]time.Duration
	prefix   string
	requests atomic.Int64
	logger   logger.Logger

	router *mux.Router
}

// Option applies a configuration option to the Backend.
type Option func(*Backend)

// WithLogs replaces the generated log.
func WithLogs(logs []LogEntry) Option {
	return func(b *Backend) {
		b.logs = append([]LogEntry(nil), logs...)
	}
}

// WithAccounts replaces the accepted credentials.
func WithAccounts(accounts map[string]string) Option {
	return func(b *Backend) {
		b.accounts = accounts
	}
}

// WithDelay delays responses to path, relative to the API prefix.
func WithDelay(path string, d time.Duration) Option {
	return func(b *Backend) {
		b.delays[path] = d
	}
}

// WithPrefix sets the API prefix. Defaults to /api.
func WithPrefix(p string) Option {
	return func(b *Backend) {
		b.prefix = strings.TrimRight(p, "/")
	}
}

// WithLogger sets a custom logger for the backend.
func WithLogger(l logger.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Backend over a generated log unless WithLogs is given.
func New(opts ...Option) *Backend {
	b := &Backend{
		accounts: DefaultAccounts,
		tokens:   make(map[string]string),
		delays:   make(map[string]time.Duration),
		prefix:   "/api",
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logs == nil {
		b.logs = Generate(defaultLogEntries, defaultUsers)
	}
	if b.logger == nil {
		b.logger = logger.Named("test_backend")
	}
	b.router = b.routes()
	return b
}

func (b *Backend) routes() *mux.Router {
	r := mux.NewRouter()
	r.UseEncodedPath()
	api := r.PathPrefix(b.prefix).Subrouter()
	api.HandleFunc("/auth/login", b.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", b.authed(b.handleLogout)).Methods(http.MethodPost)
	api.HandleFunc("/summary", b.authed(b.handleSummary)).Methods(http.MethodGet)
	api.HandleFunc("/heart-rate", b.authed(b.handleHeartRate)).Methods(http.MethodGet)
	api.HandleFunc("/logins", b.authed(b.handleLogins)).Methods(http.MethodGet)
	api.HandleFunc("/user-wise-heart-rate", b.authed(b.handleUserWiseHeartRate)).Methods(http.MethodGet)
	api.HandleFunc("/users", b.authed(b.handleUsers)).Methods(http.MethodGet)
	api.HandleFunc("/user/{id}", b.authed(b.handleUser)).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	return r
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.requests.Add(1)
	if d := b.delayFor(r.URL.Path); d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
	}
	b.router.ServeHTTP(w, r)
}

func (b *Backend) delayFor(path string) time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.delays[strings.TrimPrefix(path, b.prefix)]
}

// Requests reports how many requests reached the backend.
func (b *Backend) Requests() int64 { return b.requests.Load() }

// IssueToken creates a valid token for username without a login request.
func (b *Backend) IssueToken(username string) string {
	token := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = username
	return token
}

// Revoke invalidates token.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

// Append adds entries to the log.
func (b *Backend) Append(entries ...LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = append(b.logs, entries...)
}

func (b *Backend) snapshot() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logs
}

// authed rejects requests without a known bearer token.
func (b *Backend) authed(next func(w http.ResponseWriter, r *http.Request, user string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Authentication token is missing")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Invalid token format. Use: Authorization: Bearer <token>")
			return
		}
		b.mu.RLock()
		user, known := b.tokens[token]
		b.mu.RUnlock()
		if !known {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r, user)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username       string `json:"username"`
	Token          string `json:"token"`
	ExpiresInHours int    `json:"expires_in_hours"`
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing username or password")
		return
	}
	if pw, ok := b.accounts[req.Username]; !ok || pw != req.Password {
		b.logger.Warn(r.Context(), "login rejected", logger.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	writeData(w, "Login successful", loginResponse{
		Username:       req.Username,
		Token:          b.IssueToken(req.Username),
		ExpiresInHours: tokenExpirationHours,
	})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request, user string) {
	b.Revoke(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	writeData(w, "Logout successful. Please discard the token.", map[string]string{"username": user})
}

func (b *Backend) handleSummary(w http.ResponseWriter, _ *http.Request, _ string) {
	writeData(w, "", summarize(b.snapshot()))
}

func (b *Backend) handleHeartRate(w http.ResponseWriter, _ *http.Request, _ string) {
	writeData(w, "", heartRateStats(b.snapshot()))
}

func (b *Backend) handleLogins(w http.ResponseWriter, _ *http.Request, _ string) {
	writeData(w, "", loginStats(b.snapshot()))
}

func (b *Backend) handleUserWiseHeartRate(w http.ResponseWriter, _ *http.Request, _ string) {
	writeData(w, "", userWiseHeartRate(b.snapshot()))
}

func (b *Backend) handleUsers(w http.ResponseWriter, _ *http.Request, _ string) {
	users := userIDs(b.snapshot())
	writeData(w, "", model.Roster{TotalUsers: len(users), Users: users})
}

func (b *Backend) handleUser(w http.ResponseWriter, r *http.Request, _ string) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	d, ok := userDetail(b.snapshot(), id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("User '%s' not found", id))
		return
	}
	writeData(w, "", d)
}

func writeData(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, model.Envelope[any]{Status: model.StatusSuccess, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Envelope[any]{Status: statusError, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
