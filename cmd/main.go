package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pulseboard/internal/adapters/backend"
	"github.com/okian/pulseboard/internal/adapters/http/api"
	"github.com/okian/pulseboard/internal/adapters/session"
	"github.com/okian/pulseboard/internal/adapters/view"
	"github.com/okian/pulseboard/internal/adapters/view/terminal"
	"github.com/okian/pulseboard/internal/adapters/view/web"
	"github.com/okian/pulseboard/internal/app"
	"github.com/okian/pulseboard/internal/config"
	"github.com/okian/pulseboard/pkg/logger"
	"github.com/okian/pulseboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

var signals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
}

var cfgFile string

func main() {
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging: "+err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to close log file: "+err.Error())
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pulseboard",
		Short:        "Health log dashboard client",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cfgFile != "" {
				_ = os.Setenv("PULSEBOARD_CONFIG", cfgFile)
			}
		},
		RunE: runDashboard,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or TOML)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the dashboard until interrupted or the session ends",
			RunE:  runDashboard,
		},
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newMockBackendCmd(),
	)
	return root
}

// loadConfig loads the configuration and applies its logging settings.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.View == config.ViewTerminal {
		// stdout carries the dashboard frames
		_ = logger.InitWithWriter(os.Stderr)
	}
	if cfg.LogFile != "" {
		if err := logger.TeeToFile(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

func openGuard(cfg *config.Config) (*session.Guard, *session.SQLStore, error) {
	store, err := session.OpenSQLStore(cfg.SessionPath, cfg.LogLevel == "debug")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return session.NewGuard(store, session.WithLoginURL(cfg.LoginURL)), store, nil
}

func newController(cfg *config.Config, guard *session.Guard, v app.View) *app.Controller {
	return app.New(guard, v,
		app.WithBaseURL(cfg.BaseURL),
		app.WithLoginURL(cfg.LoginURL),
		app.WithRefreshInterval(cfg.RefreshInterval()),
		app.WithClientOptions(backend.WithTimeout(cfg.RequestTimeout())),
		app.WithLogger(logger.Named("dashboard")),
	)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), signals...)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.Get()

	guard, store, err := openGuard(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	go startSystemMetricsUpdater(ctx)

	if cfg.View == config.ViewTerminal {
		ctrl := newController(cfg, guard, terminal.New(cmd.OutOrStdout()))
		err := ctrl.Run(ctx)
		if errors.Is(err, app.ErrNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Run `pulseboard login` to start a session.")
			return nil
		}
		return err
	}

	var opener view.Opener
	if cfg.OpenBrowser {
		opener = view.BrowserOpener(log)
	}
	page := web.New(web.WithOpener(opener))
	ctrl := newController(cfg, guard, page)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(page, ctrl).Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		close(serveErr)
	}()
	if opener != nil {
		opener("http://" + cfg.Addr + "/")
	}

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, app.ErrNoSession) {
		return err
	}

	// The page server keeps answering (notice or redirect) until interrupted.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMetrics(m.Alloc, runtime.NumGoroutine())
}
