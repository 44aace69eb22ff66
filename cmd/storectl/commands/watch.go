package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/dashboard"
	"github.com/systmms/storectl/internal/lifecycle"
	"github.com/systmms/storectl/internal/metrics"
)

// staleAfter is how far behind the collection may lag before the watch view
// flags it. Two missed polls is a reasonable signal that the backend is
// unreachable.
const staleAfterPolls = 3

func NewWatchCommand(cfg *config.Config) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard of all stores",
		Long: `Continuously poll the control plane and re-render the store list as
lifecycle states change. The view stays up even when the backend is
unreachable; it keeps showing the last known state with a stale marker.

Press Ctrl-C to exit.

Examples:
  storectl watch

  # Also expose Prometheus metrics while watching
  storectl watch --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			svc, cache, err := newService(cfg)
			if err != nil {
				return err
			}
			defer cache.Close()

			if metricsAddr != "" {
				server := metrics.NewServer(metricsAddr)
				server.Start(func(err error) {
					cfg.Logger.Error("metrics server: %v", err)
				})
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = server.Stop(shutdownCtx)
				}()
				cfg.Logger.Info("Serving metrics on %s/metrics", metricsAddr)
			}

			cancel, err := svc.SubscribeStores()
			if err != nil {
				return err
			}
			defer cancel()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			staleAfter := time.Duration(staleAfterPolls) * cfg.Definition.PollInterval()

			// The server owns the lifecycle; we only note regressions.
			lastStatus := map[string]lifecycle.Status{}

			render := func() {
				stores, ok := svc.Stores()
				if !ok {
					if err := cache.InitialError(dashboard.KeyStores); err != nil {
						fmt.Fprintln(out, "Cannot reach the provisioning API yet; retrying...")
					} else {
						fmt.Fprintln(out, "Loading stores...")
					}
					return
				}

				staleness := cache.Staleness(dashboard.KeyStores)
				metrics.SetStaleness(dashboard.KeyStores, staleness.Seconds())

				fmt.Fprintf(out, "\n%s", time.Now().Format("15:04:05"))
				if staleness > staleAfter {
					fmt.Fprintf(out, "  (stale: last update %s ago)", staleness.Round(time.Second))
				}
				fmt.Fprintln(out)

				for _, store := range stores {
					next := lifecycle.Status(store.Status)
					if prev, seen := lastStatus[store.ID]; seen && prev != next && !lifecycle.CanTransition(prev, next) {
						cfg.Logger.Debug("store %s moved %s -> %s, which the lifecycle graph does not allow", store.ID, prev, next)
					}
					lastStatus[store.ID] = next
				}

				if len(stores) == 0 {
					fmt.Fprintln(out, "No stores yet. Create one with 'storectl create <name>'")
					return
				}
				renderStoreTable(out, stores, cfg.NoColor)
			}

			// Re-render on every cache change plus a slow heartbeat so the
			// stale marker appears even when nothing changes.
			heartbeat := time.NewTicker(cfg.Definition.PollInterval() * 2)
			defer heartbeat.Stop()

			render()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-cache.Updates():
					render()
				case <-heartbeat.C:
					render()
				}
			}
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}
