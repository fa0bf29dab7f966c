package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/okian/pulseboard/internal/adapters/backend"
	"github.com/okian/pulseboard/internal/adapters/view/terminal"
	"github.com/okian/pulseboard/pkg/logger"
)

func newLoginCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the backend and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), signals...)
			defer stop()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			guard, store, err := openGuard(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			password, err := readPassword(cmd.InOrStdin())
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			client := backend.New(cfg.BaseURL, backend.WithTimeout(cfg.RequestTimeout()))
			cred, err := client.Login(ctx, username, password)
			if err != nil {
				return err
			}
			if err := guard.Save(ctx, cred); err != nil {
				return fmt.Errorf("failed to store session: %w", err)
			}
			logger.Get().Info(ctx, "session stored", logger.String("user", cred.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", cred.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// readPassword reads without echo from a terminal, or one line otherwise.
func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), signals...)
			defer stop()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			guard, store, err := openGuard(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !guard.HasSession(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), "No session.")
				return nil
			}
			newController(cfg, guard, terminal.New(cmd.OutOrStdout())).Logout(ctx)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			guard, store, err := openGuard(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cred := guard.Credential(ctx)
			if !cred.Valid() {
				fmt.Fprintln(cmd.OutOrStdout(), "No session.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", cred.Username)
			return nil
		},
	}
}
