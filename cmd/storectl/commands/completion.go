package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/storectl/internal/config"
)

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for storectl.

To load completions:

Bash:
  $ source <(storectl completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ storectl completion bash > /etc/bash_completion.d/storectl
  # macOS:
  $ storectl completion bash > $(brew --prefix)/etc/bash_completion.d/storectl

Zsh:
  $ storectl completion zsh > "${fpath[1]}/_storectl"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ storectl completion fish | source

  # To load completions for each session, execute once:
  $ storectl completion fish > ~/.config/fish/completions/storectl.fish

PowerShell:
  PS> storectl completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
