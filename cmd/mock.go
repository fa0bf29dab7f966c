package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/okian/pulseboard/internal/testbackend"
	"github.com/okian/pulseboard/pkg/logger"
)

func newMockBackendCmd() *cobra.Command {
	var (
		addr    string
		entries int
		users   int
	)
	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve a fake health-log API over generated data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), signals...)
			defer stop()
			log := logger.Named("mock_backend")

			b := testbackend.New(testbackend.WithLogs(testbackend.Generate(entries, users)))
			srv := &http.Server{
				Addr:              addr,
				Handler:           b,
				ReadTimeout:       readTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			serveErr := make(chan error, 1)
			go func() {
				log.Info(ctx, "starting mock backend", logger.String("addr", addr),
					logger.Int("entries", entries), logger.Int("users", users))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("mock backend failed: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "listen address")
	cmd.Flags().IntVar(&entries, "entries", 500, "generated log entries")
	cmd.Flags().IntVar(&users, "users", 8, "generated users")
	return cmd
}
