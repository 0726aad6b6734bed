package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionShells maps each supported shell to its generator.
var completionShells = map[string]func(cmd *cobra.Command) error{
	"bash":       func(cmd *cobra.Command) error { return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true) },
	"zsh":        func(cmd *cobra.Command) error { return cmd.Root().GenZshCompletion(cmd.OutOrStdout()) },
	"fish":       func(cmd *cobra.Command) error { return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true) },
	"powershell": func(cmd *cobra.Command) error { return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()) },
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for graphmap.

  $ source <(graphmap completion bash)
  $ graphmap completion zsh > "${fpath[1]}/_graphmap"
  $ graphmap completion fish > ~/.config/fish/completions/graphmap.fish
  PS> graphmap completion powershell | Out-String | Invoke-Expression

Start a new shell for persistent completions to take effect.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := completionShells[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return gen(cmd)
		},
	}
}
