package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/shopkeep/internal/api"
	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the JSON API used by the client dashboards and the admin page.

The server stops gracefully on SIGINT or SIGTERM, waiting up to
server.shutdown_timeout for requests in flight.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.host and server.port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = a.cfg.Server.Addr()
	}

	return serve(ctx, a, addr)
}

// newServer wires the API over the application services with process, Go
// runtime and connection pool metrics registered next to the HTTP ones.
func newServer(a *app) *api.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(a.store.DB().DB, "shopkeep"),
	)

	return api.New(api.Deps{
		Store:    a.store,
		Clients:  a.clients,
		Catalog:  a.catalog,
		Books:    a.books,
		Registry: reg,
	}, api.Options{IsDevel: a.cfg.Server.IsDevel}, a.logger)
}

// purgeSessions drops expired sessions every interval until ctx ends.
func purgeSessions(ctx context.Context, a *app, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.sessions.Purge(ctx)
			if err != nil {
				common.LogError(ctx, a.logger, err, "failed to purge sessions", nil)
				continue
			}
			if n > 0 {
				a.logger.Debug("expired sessions purged", "count", n)
			}
		}
	}
}

// serve runs the server until ctx is canceled, then shuts it down.
func serve(ctx context.Context, a *app, addr string) error {
	srv := newServer(a)
	go purgeSessions(ctx, a, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(addr); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down API", "timeout", a.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}
