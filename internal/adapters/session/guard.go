package session

import (
	"context"
	"errors"

	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/internal/domain/types"
	"github.com/okian/pulseboard/pkg/logger"
	"github.com/okian/pulseboard/pkg/metrics"
)

// ContentReplacer replaces everything on display with a notice.
type ContentReplacer interface {
	ReplaceContent(n types.Notice)
}

// Guard decides whether the dashboard may run and owns the credential lifecycle.
// Absence of a token is an expected condition, so no method returns it as an error.
type Guard struct {
	store    Store
	loginURL string
	logger   logger.Logger
}

// Option applies a configuration option to the Guard.
type Option func(*Guard)

// WithLoginURL sets the link shown in the authentication notice.
func WithLoginURL(u string) Option {
	return func(g *Guard) {
		if u != "" {
			g.loginURL = u
		}
	}
}

// WithLogger sets a custom logger for the guard.
func WithLogger(l logger.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a Guard over store.
func NewGuard(store Store, opts ...Option) *Guard {
	g := &Guard{store: store, loginURL: "/"}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.Named("session")
	}
	return g
}

// Credential reads the stored credential. Storage failures read as no session.
func (g *Guard) Credential(ctx context.Context) model.Credential {
	token := g.read(ctx, KeyToken)
	if token == "" {
		return model.Credential{}
	}
	return model.Credential{Token: token, Username: g.read(ctx, KeyUsername)}
}

// HasSession reports whether a non-empty token is stored.
func (g *Guard) HasSession(ctx context.Context) bool {
	return g.read(ctx, KeyToken) != ""
}

// RequireSession returns true when a session exists. Otherwise it replaces
// the view content with the authentication notice and returns false.
func (g *Guard) RequireSession(ctx context.Context, view ContentReplacer) bool {
	if g.HasSession(ctx) {
		return true
	}
	g.logger.Info(ctx, "no session credential; authentication required")
	if view != nil {
		view.ReplaceContent(types.AuthRequiredNotice(g.loginURL))
	}
	return false
}

// Save persists a credential. Only the login flow writes credentials.
func (g *Guard) Save(ctx context.Context, c model.Credential) error {
	if !c.Valid() {
		return errors.New("credential has no token")
	}
	if err := g.store.Set(ctx, KeyToken, c.Token); err != nil {
		return err
	}
	return g.store.Set(ctx, KeyUsername, c.Username)
}

// Clear deletes the token and the display name.
func (g *Guard) Clear(ctx context.Context) {
	if err := g.store.Delete(ctx, KeyToken, KeyUsername); err != nil {
		g.logger.Error(ctx, "failed to clear session", logger.Error(err))
		return
	}
	metrics.RecordSessionInvalidated()
}

func (g *Guard) read(ctx context.Context, key string) string {
	v, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.logger.Error(ctx, "failed to read session", logger.String("key", key), logger.Error(err))
		}
		return ""
	}
	return v
}
