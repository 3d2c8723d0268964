package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for layerroute.

To load completions:

Bash:
  $ source <(layerroute completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ layerroute completion bash > /etc/bash_completion.d/layerroute
  # macOS:
  $ layerroute completion bash > $(brew --prefix)/etc/bash_completion.d/layerroute

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ layerroute completion zsh > "${fpath[1]}/_layerroute"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ layerroute completion fish | source

  # To load completions for each session, execute once:
  $ layerroute completion fish > ~/.config/fish/completions/layerroute.fish

PowerShell:
  PS> layerroute completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> layerroute completion powershell > layerroute.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(c.stdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(c.stdout())
			case "fish":
				return cmd.Root().GenFishCompletion(c.stdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.stdout())
			}
			return nil
		},
	}

	return cmd
}
