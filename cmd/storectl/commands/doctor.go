package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/logging"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and control-plane connectivity",
		Long: `Verify that storectl can talk to the provisioning control plane.

This command checks:
- Configuration file validity
- Provisioning API reachability
- Whether an API token is configured`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Logger.Info("Checking storectl configuration...")
			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("Configuration error: %v", err)
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.Logger.Info("Configuration loaded (api_url: %s)", cfg.Definition.APIURL)

			if token := cfg.ResolveToken(); token != "" {
				cfg.Logger.Info("API token configured")
				cfg.Logger.Debug("resolved API token %s", logging.Secret(token))
			} else {
				cfg.Logger.Warn("No API token configured; assuming the control plane runs without auth")
			}

			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Definition.RequestTimeout())
			defer cancel()

			if err := client.Ping(ctx); err != nil {
				if api.IsTransport(err) {
					cfg.Logger.Error("Control plane unreachable: %v", err)
				} else {
					cfg.Logger.Error("Control plane rejected the probe: %v", err)
				}
				return err
			}

			cfg.Logger.Info("Control plane reachable")
			return nil
		},
	}

	return cmd
}
