// Package app implements the dashboard session controller: it guards the
// session, loads every display slice from the backend and refreshes them on
// a fixed period.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/okian/pulseboard/internal/adapters/backend"
	"github.com/okian/pulseboard/internal/adapters/session"
	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/internal/domain/types"
	"github.com/okian/pulseboard/pkg/logger"
	"github.com/okian/pulseboard/pkg/metrics"
)

const (
	defaultRefreshInterval = 30 * time.Second
	defaultBaseURL         = "http://localhost:5000/api"
	defaultLoginURL        = "/"
	loadErrorAlert         = "Error loading dashboard data"
)

// Controller composes the session guard, the data loader and the display updater.
type Controller struct {
	guard *session.Guard
	view  View

	baseURL    string
	loginURL   string
	interval   time.Duration
	clientOpts []backend.Option
	logger     logger.Logger

	startOnce sync.Once
	cred      model.Credential
	client    *backend.Client

	chartsMu sync.Mutex
	charts   map[types.ChartSlot]Chart

	navigateOnce sync.Once
	gone         chan struct{}

	cycles sync.WaitGroup
}

// New constructs a Controller writing to view.
func New(guard *session.Guard, view View, opts ...Option) *Controller {
	c := &Controller{
		guard:    guard,
		view:     view,
		baseURL:  defaultBaseURL,
		loginURL: defaultLoginURL,
		interval: defaultRefreshInterval,
		charts:   make(map[types.ChartSlot]Chart),
		gone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("dashboard")
	}
	return c
}

// Start checks the session. Without one the view shows the authentication
// notice and ErrNoSession is returned before any request is issued.
func (c *Controller) Start(ctx context.Context) error {
	if !c.guard.RequireSession(ctx, c.view) {
		return ErrNoSession
	}
	c.load(ctx)
	c.view.SetText(types.SlotWelcome, "Welcome, "+c.cred.Username+"!")
	return nil
}

// load reads the credential once and builds the backend client around it.
func (c *Controller) load(ctx context.Context) {
	c.startOnce.Do(func() {
		c.cred = c.guard.Credential(ctx)
		opts := append([]backend.Option{
			backend.WithToken(c.cred.Token),
			backend.WithUnauthorizedHandler(c.invalidate),
		}, c.clientOpts...)
		c.client = backend.New(c.baseURL, opts...)
	})
}

// Done is closed once the controller navigated away from the dashboard.
func (c *Controller) Done() <-chan struct{} { return c.gone }

// invalidate clears the session and leaves the dashboard. Repeated calls
// from parallel slices clear again but navigate only once.
func (c *Controller) invalidate(ctx context.Context) {
	c.guard.Clear(ctx)
	c.leave(ctx)
}

func (c *Controller) leave(ctx context.Context) {
	c.navigateOnce.Do(func() {
		c.logger.Info(ctx, "leaving dashboard", logger.String("target", c.loginURL))
		c.view.Navigate(c.loginURL)
		close(c.gone)
	})
}

// Logout ends the session on the backend, clears it locally and navigates
// to the login page. Backend failures are logged and do not stop the logout.
func (c *Controller) Logout(ctx context.Context) {
	c.load(ctx)
	if err := c.client.Logout(ctx); err != nil {
		c.logger.Warn(ctx, "logout request failed", logger.Error(err))
	}
	c.guard.Clear(ctx)
	c.leave(ctx)
}

// rebuildChart destroys the slot's previous instance before creating the
// new one, so a slot never holds more than one live chart.
func (c *Controller) rebuildChart(slot types.ChartSlot, spec types.ChartSpec) {
	c.chartsMu.Lock()
	defer c.chartsMu.Unlock()

	if prev, ok := c.charts[slot]; ok && prev != nil {
		prev.Destroy()
		delete(c.charts, slot)
	}
	c.charts[slot] = c.view.NewChart(slot, spec)

	// Without a view count, report the single instance held in c.charts.
	live := 1
	if lc, ok := c.view.(LiveCounter); ok {
		live = lc.LiveCharts(slot)
	}
	metrics.RecordChartRebuilt(string(slot), live)
}
