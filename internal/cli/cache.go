package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmap/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local map cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// localCacheDir returns the file cache directory from the config, or the
// XDG default.
func (c *CLI) localCacheDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// openLocalCache opens the file cache, or prints "Cache is empty" and
// returns nil when its directory does not exist yet.
func (c *CLI) openLocalCache() (*cache.FileCache, error) {
	dir, err := c.localCacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		printInfo("Cache is empty")
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached maps",
		Long: `Clear cached maps.

With --expired only entries past their TTL (and unreadable ones) are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.openLocalCache()
			if err != nil || fc == nil {
				return err
			}
			remove, what := fc.Clear, "cached"
			if expired {
				remove, what = fc.Prune, "expired"
			}
			count, err := remove()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d %s entries", count, what)
			if st, err := fc.Stats(); err == nil && st.Entries > 0 {
				printDetail("%d entries remain (%s)", st.Entries, formatBytes(st.Bytes))
			}
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries")
	return cmd
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached maps",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.openLocalCache()
			if err != nil || fc == nil {
				return err
			}
			st, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}
			printKeyValue("Directory", fc.Dir())
			printKeyValue("Entries", strconv.Itoa(st.Entries))
			printKeyValue("Expired", strconv.Itoa(st.Expired))
			printKeyValue("Size", formatBytes(st.Bytes))
			if st.Expired > 0 {
				printNextStep("Remove expired entries", appName+" cache clear --expired")
			}
			return nil
		},
	}
}

// formatBytes renders n with a binary unit, e.g. "1.5 MiB".
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

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.localCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
