package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/credentials"
	sterrors "github.com/systmms/storectl/internal/errors"
)

func NewCreateCommand(cfg *config.Config) *cobra.Command {
	var (
		engineName      string
		copyToClipboard bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Provision a new store",
		Long: `Provision a new storefront environment.

The name becomes the store's subdomain, so it is limited to lowercase
letters, digits, and hyphens. The admin credentials are printed exactly
once; the control plane never exposes them again.

Examples:
  # WooCommerce store (default engine)
  storectl create demo-1

  # Medusa store, copying the credentials to the clipboard
  storectl create demo-2 --engine medusa --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := cfg.Load(); err != nil {
				return err
			}

			engine := api.Engine(engineName)
			if engine == "" {
				engine = api.Engine(cfg.Definition.DefaultEngine)
			}
			if !api.KnownEngine(engine) {
				return sterrors.UserError{
					Message:    fmt.Sprintf("Unknown engine '%s'", engine),
					Suggestion: fmt.Sprintf("Supported engines: %s, %s", api.EngineWooCommerce, api.EngineMedusa),
				}
			}

			svc, cache, err := newService(cfg)
			if err != nil {
				return err
			}
			defer cache.Close()

			store, onetime, err := svc.Create(context.Background(), name, engine)
			if err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) {
					return sterrors.UserError{
						Message:    "Store creation rejected",
						Details:    apiErr.Message,
						Suggestion: "Pick a different name (lowercase letters, digits, hyphens)",
						Err:        err,
					}
				}
				return err
			}
			defer onetime.Destroy()

			creds, err := onetime.Reveal()
			if err != nil {
				return fmt.Errorf("failed to reveal credentials: %w", err)
			}

			out := cmd.OutOrStdout()
			cfg.Logger.Info("Provisioning started for %s (%s)", store.Name, store.Engine)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  Save these credentials now. They will not be shown again.")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  User: %s\n", creds.Username)
			fmt.Fprintf(out, "  Pass: %s\n", creds.Password)
			fmt.Fprintln(out)
			if cfg.Definition.BaseDomain != "" {
				fmt.Fprintf(out, "  Storefront will be available at %s\n", api.SubdomainURL(cfg.Definition.BaseDomain, store.Name))
			}
			fmt.Fprintf(out, "  Follow progress with: storectl logs %s --follow\n", store.ID)

			if copyToClipboard {
				text := fmt.Sprintf("User: %s\nPass: %s", creds.Username, creds.Password)
				if err := credentials.CopyToClipboard(text); err != nil {
					// Best-effort by contract: no retry, just a note.
					cfg.Logger.Warn("Could not copy credentials to clipboard: %v", err)
				} else {
					cfg.Logger.Info("Credentials copied to clipboard")
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&engineName, "engine", "", "Store engine (woocommerce or medusa; defaults to config)")
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the credentials to the clipboard")

	return cmd
}
