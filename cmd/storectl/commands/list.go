package commands

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/dashboard"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all stores",
		Long: `List every store the control plane tracks, with its lifecycle state.

Examples:
  # One-shot listing
  storectl list

  # Live view that refreshes as stores change
  storectl watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			svc, cache, err := newService(cfg)
			if err != nil {
				return err
			}
			defer cache.Close()

			cancel, err := svc.SubscribeStores()
			if err != nil {
				return err
			}
			defer cancel()

			if err := waitInitial(cache, dashboard.KeyStores, cfg.Definition.RequestTimeout()+time.Second); err != nil {
				return err
			}

			stores, _ := svc.Stores()
			if len(stores) == 0 {
				cfg.Logger.Info("No stores yet. Create one with 'storectl create <name>'")
				return nil
			}

			renderStoreTable(cmd.OutOrStdout(), stores, cfg.NoColor)
			return nil
		},
	}

	return cmd
}
