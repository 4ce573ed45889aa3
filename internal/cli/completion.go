package cli

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/pipeline"
	"github.com/matzehuels/flamechart/pkg/search"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for flamechart. Besides commands and flags,
the scripts complete layout kinds, themes, input formats and search modes.

  $ source <(flamechart completion bash)
  $ flamechart completion zsh > "${fpath[1]}/_flamechart"
  $ flamechart completion fish > ~/.config/fish/completions/flamechart.fish
  PS> flamechart completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// flagValues maps flag names to the fixed values they accept.
func flagValues() map[string][]string {
	kinds := make([]string, len(flamechart.Kinds))
	for i, k := range flamechart.Kinds {
		kinds[i] = string(k)
	}
	return map[string][]string{
		"kind":        kinds,
		"theme":       {"light", "dark"},
		"input":       sortedKeys(pipeline.ValidInputs),
		"format":      sortedKeys(pipeline.ValidFormats),
		"search-mode": {string(search.ModeName), string(search.ModeFile), string(search.ModeKey)},
	}
}

// registerFlagCompletions attaches value completions to every command in
// the tree that defines one of the enumerated flags.
func registerFlagCompletions(cmd *cobra.Command) {
	for name, values := range flagValues() {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
	for _, sub := range cmd.Commands() {
		registerFlagCompletions(sub)
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
