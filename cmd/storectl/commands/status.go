package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/dashboard"
)

func NewStatusCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show a single store's state",
		Long: `Show the current lifecycle state and connection details of one store.

Examples:
  storectl status s-demo-1`,
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

			cancel, err := svc.SubscribeStore(id)
			if err != nil {
				return err
			}
			defer cancel()

			if err := waitInitial(cache, dashboard.KeyStore(id), cfg.Definition.RequestTimeout()+time.Second); err != nil {
				return err
			}

			store, gone, _ := svc.Store(id)
			if gone {
				cfg.Logger.Info("Store %s no longer exists", id)
				return nil
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Name:\t%s\n", store.Name)
			fmt.Fprintf(tw, "ID:\t%s\n", store.ID)
			fmt.Fprintf(tw, "Engine:\t%s\n", store.Engine)
			fmt.Fprintf(tw, "Status:\t%s\n", statusBadge(store.Status, cfg.NoColor))
			fmt.Fprintf(tw, "Storefront:\t%s\n", strOrDash(store.URL))
			fmt.Fprintf(tw, "Admin panel:\t%s\n", strOrDash(store.StoreAdminURL))
			_ = tw.Flush()

			return nil
		},
	}

	return cmd
}
