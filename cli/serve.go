package cli

import (
	"context"
	"errors"
	"log/slog"
	"memo-app/config/setup"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().StringP("port", "p", "", "Listen port (default: $PORT or 3000)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	logger := setup.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	db, err := setup.InitDatabase(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return err
	}

	application, err := setup.InitApp(cmd.Context(), db, cfg, logger)
	if err != nil {
		logger.Error("failed to load memos", "error", err)
		db.Close()
		return err
	}

	fiberApp := setup.NewFiberApp(cfg, logger)
	setup.ApplyMiddleware(fiberApp, cfg, application.Metrics, logger)
	setup.RegisterRoutes(fiberApp, application)

	if application.Backup != nil {
		application.Backup.Start()
	}

	logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- fiberApp.Listen(":" + cfg.Port)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down server gracefully")
	case err := <-listenErr:
		if err != nil {
			logger.Error("server failed", "error", err)
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server forced to shutdown", "error", err)
	}

	setup.Shutdown(application, db, logger)
	logger.Info("server stopped")
	return serveErr
}
