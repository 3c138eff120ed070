package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpserver "baletrack/infrastructure/http"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operator screens over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Addr
			}
			server := httpserver.NewServer(httpserver.Options{
				Addr:           addr,
				SecureCookies:  a.cfg.SecureCookies,
				RequestTimeout: a.cfg.RequestTimeout,
			}, a.data, a.sessions, a.audit)
			if err := server.Start(); err != nil {
				return err
			}
			slog.Info("baletrack listening", slog.String("addr", addr), slog.String("directus", a.cfg.DirectusURL), slog.Bool("session_restored", a.sessions.IsAuthenticated()))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			if err := server.Stop(); err != nil {
				slog.Error("graceful shutdown error", slog.Any("err", err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
