package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/dashboard"
	"github.com/systmms/storectl/internal/timeline"
)

func NewLogsCommand(cfg *config.Config) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs <id>",
		Short: "Show a store's provisioning timeline",
		Long: `Show the audit timeline of a store: every provisioning event in the
order the server recorded it. Structured event details are rendered as
formatted blocks; anything else is shown verbatim.

Examples:
  storectl logs s-demo-1

  # Keep polling and re-render as new events arrive
  storectl logs s-demo-1 --follow`,
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

			cancel, err := svc.SubscribeAudit(id)
			if err != nil {
				return err
			}
			defer cancel()

			if err := waitInitial(cache, dashboard.KeyAudit(id), cfg.Definition.RequestTimeout()+time.Second); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			render := func() {
				entries, _ := svc.Audit(id)
				timeline.Render(out, timeline.Build(entries), cfg.NoColor)
			}

			render()
			if !follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			auditKey := dashboard.KeyAudit(id)
			for {
				select {
				case <-ctx.Done():
					return nil
				case key := <-cache.Updates():
					if key != auditKey {
						continue
					}
					fmt.Fprintln(out)
					render()
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep polling and re-render on new events")

	return cmd
}
