package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/pkg/cache"
	"github.com/matzehuels/flamechart/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// openManagedCache opens the file cache directory. A directory that does
// not exist yet is reported as an empty cache.
func (c *CLI) openManagedCache() (cache.Manager, string, error) {
	if c.Config.Cache.Backend != config.BackendFile {
		printWarning("Cache backend is %q; only the file cache is managed here", c.Config.Cache.Backend)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, "", fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return cache.NullCache{}, dir, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, "", err
	}
	return fc, dir, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, dir, err := c.openManagedCache()
			if err != nil {
				return err
			}
			defer mc.Close()

			count, err := mc.Clear()
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, dir, err := c.openManagedCache()
			if err != nil {
				return err
			}
			defer mc.Close()

			entries, size, err := mc.Stats()
			if err != nil {
				return err
			}
			printKeyValue("Directory", dir)
			printKeyValue("Entries", fmt.Sprintf("%d", entries))
			printKeyValue("Size", formatBytes(size))

			fc, ok := mc.(*cache.FileCache)
			if !ok || entries == 0 {
				return nil
			}
			kinds, err := fc.StatsByKind()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(kinds))
			for k := range kinds {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				printDetail("%-10s %d", k, kinds[k])
			}
			return nil
		},
	}
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
