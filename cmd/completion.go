package cmd

import (
	"github.com/spf13/cobra"
)

// Auto-complete commands, flags, and args by sourcing the generated scripts to the shell environment
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:
  $ source <(convodash completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ convodash completion bash > /etc/bash_completion.d/convodash
  # macOS:
  $ convodash completion bash > /usr/local/etc/bash_completion.d/convodash

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ convodash completion zsh > "${fpath[1]}/_convodash"

Fish:
  $ convodash completion fish > ~/.config/fish/completions/convodash.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// Generating a script needs no config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		default:
			return cmd.Root().GenFishCompletion(out, true)
		}
	},
}
