package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pdfdex/internal/connectors/filesystem"
	"github.com/custodia-labs/pdfdex/internal/core/services"
	"github.com/custodia-labs/pdfdex/internal/logger"
)

var metricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the configured tree and keep the index current",
	Long: `Runs a full index pass, then follows filesystem events so creates,
modifications, moves and deletions are reflected in the index as they
happen. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up before following events, so the watcher only has deltas
	// to deal with.
	cmd.Printf("Indexing %s...\n", appConfig.RootDir)
	stats, err := indexerService.IndexTree(ctx)
	if err != nil {
		return fmt.Errorf("initial index: %w", err)
	}
	cmd.Printf("Indexed %d documents, watching for changes. Ctrl-C to stop.\n", stats.Indexed)

	watcher := filesystem.NewWatcher(appConfig.RootDir, indexerService,
		time.Duration(appConfig.DebounceSeconds)*time.Second)
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			logger.Warn("Stopping watcher: %v", err)
		}
	}()

	scheduler := services.NewScheduler(
		time.Duration(appConfig.ReindexIntervalMinutes)*time.Minute, indexerService)
	defer scheduler.Stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return scheduler.Start(ctx)
	})

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err, ok := <-watcher.Errors():
				if !ok {
					return nil
				}
				logger.Warn("Watcher: %v", err)
			}
		}
	})

	if metricsAddr != "" {
		server := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
		group.Go(func() error {
			logger.Info("Metrics on %s/metrics", metricsAddr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Stopped.")
	return nil
}
