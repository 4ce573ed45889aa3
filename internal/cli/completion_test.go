package cli

import (
	"io"
	"slices"
	"testing"

	"github.com/spf13/cobra"
)

func TestFlagCompletions(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	tests := []struct {
		command string
		flag    string
		want    string
	}{
		{"render", "kind", "left-heavy"},
		{"render", "theme", "dark"},
		{"render", "format", "svg"},
		{"render", "search-mode", "file"},
		{"search", "kind", "timing"},
		{"explore", "input", "pprof"},
	}
	for _, tt := range tests {
		t.Run(tt.command+" --"+tt.flag, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.command})
			if err != nil {
				t.Fatalf("Find(%s): %v", tt.command, err)
			}
			fn, ok := cmd.GetFlagCompletionFunc(tt.flag)
			if !ok {
				t.Fatalf("no completion registered for --%s", tt.flag)
			}
			got, directive := fn(cmd, nil, "")
			if !slices.Contains(got, tt.want) {
				t.Errorf("completions = %v, want %q among them", got, tt.want)
			}
			if directive != cobra.ShellCompDirectiveNoFileComp {
				t.Errorf("directive = %v, want NoFileComp", directive)
			}
		})
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]bool{"svg": true, "dot": true, "png": true})
	if want := []string{"dot", "png", "svg"}; !slices.Equal(got, want) {
		t.Errorf("sortedKeys() = %v, want %v", got, want)
	}
}
