// Package serve runs the HTTP API and the stale-claim reconciler.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/callwise/scraper/cmd/common"
	"github.com/callwise/scraper/internal/api"
)

const shutdownTimeout = 30 * time.Second

// Command returns the serve command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scraper HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Build(*cfgFile, *debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			return run(cmd.Context(), deps)
		},
	}
}

// run starts the server and the reconciler and blocks until interrupted.
func run(ctx context.Context, deps *common.Deps) error {
	log := deps.Logger

	handler := api.NewScrapeHandler(deps.Pages, deps.Calls, deps.Driver, log)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:              deps.Config.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	reconciler, err := startReconciler(deps)
	if err != nil {
		return err
	}
	defer reconciler.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		log.Info("shutting down", "reason", "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	return nil
}

// startReconciler schedules the stale-claim sweep. Pages left in_progress
// by a crashed step are failed once their lease expires.
func startReconciler(deps *common.Deps) (*cron.Cron, error) {
	log := deps.Logger
	lease := deps.Config.Crawler.ClaimLease

	c := cron.New()
	_, err := c.AddFunc(deps.Config.Server.ReconcileSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, sweepErr := deps.Pages.FailStale(ctx, lease)
		if sweepErr != nil {
			log.Error("stale-claim sweep failed", "error", sweepErr.Error())
			return
		}
		if n > 0 {
			log.Warn("failed stale claims", "count", n, "lease", lease.String())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reconciler: %w", err)
	}

	c.Start()
	log.Info("stale-claim reconciler started", "schedule", deps.Config.Server.ReconcileSchedule)

	return c, nil
}
