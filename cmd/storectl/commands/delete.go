package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/dashboard"
	sterrors "github.com/systmms/storectl/internal/errors"
	"github.com/systmms/storectl/internal/lifecycle"
)

func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Tear down a store",
		Long: `Request teardown of a store and its infrastructure.

Deletion is idempotent on the server, but a delete already underway is not
reissued. A FAILED store must be deleted explicitly to free up its name;
the control plane never retries a failed provision on its own.

Examples:
  storectl delete s-demo-1
  storectl delete s-demo-1 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if err := cfg.Load(); err != nil {
				return err
			}

			svc, cache, err := newService(cfg)
			if err != nil {
				return err
			}
			defer cache.Close()

			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, err := client.Get(ctx, id)
			if api.IsNotFound(err) {
				// Already gone; nothing to do.
				cfg.Logger.Info("Store %s is already gone", id)
				return nil
			}
			if err != nil {
				return err
			}

			if !lifecycle.CanDelete(lifecycle.Status(store.Status)) {
				cfg.Logger.Info("Store %s is already being deleted", store.Name)
				return nil
			}

			if !yes {
				if cfg.NonInteractive {
					return sterrors.UserError{
						Message:    "Refusing to delete without confirmation in non-interactive mode",
						Suggestion: "Pass --yes to confirm the deletion",
					}
				}
				prompt := fmt.Sprintf("Delete store '%s' (%s)? This cannot be undone.", store.Name, store.ID)
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
					cfg.Logger.Info("Aborted")
					return nil
				}
			}

			if err := svc.Delete(ctx, id); err != nil {
				if errors.Is(err, dashboard.ErrDeleteInFlight) {
					cfg.Logger.Info("Deletion of %s is already underway", store.Name)
					return nil
				}
				return err
			}

			cfg.Logger.Info("Deletion started for %s", store.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}
