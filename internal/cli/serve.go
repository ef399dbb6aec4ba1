package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidbz/llmrelay/internal/config"
	"github.com/davidbz/llmrelay/internal/httpserver"
	"github.com/davidbz/llmrelay/internal/observability"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay HTTP server",
		Long: `Run the relay HTTP server.

Configuration is read from the environment and an optional .env file.
Endpoints: POST /v1/generate, GET /v1/status, GET /health.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := buildContainer(config.Load)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return container.Invoke(func(server *httpserver.Server) error {
				return runServer(ctx, server)
			})
		},
	}
}

func runServer(ctx context.Context, server *httpserver.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	observability.FromContext(ctx).Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return <-errCh
}
