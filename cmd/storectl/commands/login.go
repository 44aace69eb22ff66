package commands

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/config"
	sterrors "github.com/systmms/storectl/internal/errors"
	"github.com/systmms/storectl/internal/logging"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var (
		token string
		clear bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the control-plane API token in the OS keyring",
		Long: `Save the API token used to authenticate against the provisioning
control plane. The token is kept in the operating system keyring, not in
the config file. STORECTL_API_TOKEN overrides it when set.

Examples:
  storectl login --token <token>

  # Prompt for the token instead of passing it on the command line
  storectl login

  # Remove the stored token
  storectl login --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				if err := config.ForgetToken(); err != nil {
					return err
				}
				cfg.Logger.Info("API token removed from keyring")
				return nil
			}

			if token == "" {
				if cfg.NonInteractive {
					return sterrors.UserError{
						Message:    "No token provided in non-interactive mode",
						Suggestion: "Pass --token <token>",
					}
				}
				cmd.Print("API token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return err
				}
				token = strings.TrimSpace(line)
			}

			if token == "" {
				return sterrors.UserError{
					Message:    "Token is empty",
					Suggestion: "Paste the token issued by the control plane",
				}
			}

			if err := config.StoreToken(token); err != nil {
				// Keyring backends sometimes echo the value in their errors.
				return sterrors.UserError{
					Message:    "Could not store the token in the OS keyring",
					Details:    logging.Redact(err.Error(), token),
					Suggestion: "Set STORECTL_API_TOKEN in the environment instead",
					Err:        err,
				}
			}

			cfg.Logger.Info("API token stored in keyring")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token (prompted for when omitted)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the stored token")

	return cmd
}
