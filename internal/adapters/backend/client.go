// Package backend talks to the health-log REST API on behalf of the dashboard.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/pkg/logger"
	"github.com/okian/pulseboard/pkg/metrics"
)

// Endpoint paths relative to the API base URL.
const (
	PathLogin             = "/auth/login"
	PathLogout            = "/auth/logout"
	PathSummary           = "/summary"
	PathHeartRate         = "/heart-rate"
	PathLogins            = "/logins"
	PathUserWiseHeartRate = "/user-wise-heart-rate"
	PathUsers             = "/users"
	pathUserPrefix        = "/user/"
)

// UserPath returns the detail path of one user.
func UserPath(id string) string {
	return pathUserPrefix + url.PathEscape(id)
}

// RequestOptions carries per-request additions.
type RequestOptions struct {
	Headers http.Header
	Body    any
}

// Client performs authenticated requests against the backend.
type Client struct {
	baseURL        string
	token          string
	http           *http.Client
	onUnauthorized func(ctx context.Context)
	logger         logger.Logger
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("backend")
	}
	return c
}

// HasToken reports whether requests carry an Authorization header.
func (c *Client) HasToken() bool { return c.token != "" }

// Do merges the JSON content type, caller headers and, when a token is
// present, the bearer Authorization header, then performs the request.
// The response is returned uninterpreted; transport errors propagate as is.
func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions) (*http.Response, error) {
	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	durationMs := float64(time.Since(start).Milliseconds())
	endpoint := endpointLabel(path)
	if err != nil {
		metrics.RecordBackendRequest(endpoint, method, "error", durationMs)
		return nil, err
	}
	metrics.RecordBackendRequest(endpoint, method, strconv.Itoa(resp.StatusCode), durationMs)
	return resp, nil
}

// Fetch issues GET path, handles a 401 through the unauthorized hook and
// decodes the envelope. Any error means the caller must not update its slice.
func Fetch[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	endpoint := endpointLabel(path)

	resp, err := c.Do(ctx, http.MethodGet, path, RequestOptions{})
	if err != nil {
		metrics.RecordBackendError(endpoint, "network")
		c.logger.Error(ctx, "API error", logger.String("endpoint", path), logger.Error(err))
		return zero, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.RecordBackendError(endpoint, "unauthorized")
		c.logger.Warn(ctx, "session rejected by backend", logger.String("endpoint", path))
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return zero, ErrUnauthorized
	}

	var env model.Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		metrics.RecordBackendError(endpoint, "decode")
		c.logger.Error(ctx, "API error", logger.String("endpoint", path), logger.Error(err))
		return zero, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	if !env.OK() {
		metrics.RecordBackendError(endpoint, "status")
		c.logger.Debug(ctx, "response not successful",
			logger.String("endpoint", path),
			logger.String("status", env.Status),
			logger.String("message", env.Message),
			logger.Int("http_status", resp.StatusCode))
		return zero, fmt.Errorf("%w: %s: %q", ErrStatus, path, env.Status)
	}
	return env.Data, nil
}

// Logout tells the backend the session ends. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Do(ctx, http.MethodPost, PathLogout, RequestOptions{})
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	Username       string `json:"username"`
	Token          string `json:"token"`
	ExpiresInHours int    `json:"expires_in_hours"`
}

// Login exchanges a username and password for a session credential.
func (c *Client) Login(ctx context.Context, username, password string) (model.Credential, error) {
	resp, err := c.Do(ctx, http.MethodPost, PathLogin, RequestOptions{
		Body: loginRequest{Username: username, Password: password},
	})
	if err != nil {
		return model.Credential{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var env model.Envelope[loginData]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return model.Credential{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !env.OK() || env.Data.Token == "" {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return model.Credential{}, fmt.Errorf("%w: %s", ErrLogin, msg)
	}

	name := env.Data.Username
	if name == "" {
		name = username
	}
	return model.Credential{Token: env.Data.Token, Username: name}, nil
}

// endpointLabel keeps metric label cardinality independent of user ids.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, pathUserPrefix) {
		return pathUserPrefix + "{id}"
	}
	return path
}
