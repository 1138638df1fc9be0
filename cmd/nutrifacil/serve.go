// cmd/nutrifacil/serve.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nutrifacil/internal/gateway"
	"nutrifacil/internal/server"
	"nutrifacil/internal/session"
	"nutrifacil/internal/storage"
	"nutrifacil/internal/views"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web app and the MCP tool endpoint",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "Host address")
	serveCmd.Flags().Int("port", 8011, "Port for HTTP")
	v.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	callLog, err := storage.NewCallLog(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize call log: %w", err)
	}
	defer callLog.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw, err := gateway.New(ctx, cfg, callLog)
	if err != nil {
		return err
	}

	sessions := session.NewStore(cfg.SessionTTL, slog.Default())
	cookies, err := session.NewCookieCodec(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	renderer, err := views.NewRenderer()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Address:           cfg.Address(),
		Gateway:           gw,
		Sessions:          sessions,
		Cookies:           cookies,
		Renderer:          renderer,
		Calls:             callLog,
		GenerationTimeout: gw.Timeout() + 10*time.Second,
		Logger:            slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	go sessions.RunSweeper(ctx, sweepInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig.String())
	case serveErr = <-errCh:
		slog.Error("server error", "error", serveErr)
	}

	slog.Info("shutting down")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}

	return serveErr
}
