package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/NCSOPHAL/landscapist/internal/diskcache"
)

func newCacheCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the image disk cache",
	}

	cmd.AddCommand(newCacheListCmd(root))
	cmd.AddCommand(newCacheStatsCmd(root))
	cmd.AddCommand(newCacheClearCmd(root))

	return cmd
}

func openDiskCache(root *rootFlags) (*diskcache.Cache, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	dir, err := resolveCacheDir(cfg)
	if err != nil {
		return nil, err
	}

	return diskcache.New(dir, int64(cfg.Cache.MaxDiskMB)<<20)
}

func newCacheListCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached images, most recently used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openDiskCache(root)
			if err != nil {
				return err
			}

			entries := cache.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The cache is empty.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					shortKey(e.Key),
					valueOrFallback(e.Format, "?"),
					humanBytes(e.Size),
					formatRelativeTime(e.StoredAt),
					formatRelativeTime(e.LastAccess),
				})
			}

			table := newTable(cmd.OutOrStdout(), []string{"Key", "Format", "Size", "Stored", "Last Access"})
			table.Bulk(rows)
			table.Render()
			return nil
		},
	}
}

func newCacheStatsCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openDiskCache(root)
			if err != nil {
				return err
			}

			stats := cache.Stats()
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)

			fmt.Fprintf(out, "%s %s\n", bold.Sprint("Directory:"), stats.Dir)
			fmt.Fprintf(out, "%s %d\n", bold.Sprint("Entries:  "), stats.Entries)
			fmt.Fprintf(out, "%s %s of %s (%s)\n",
				bold.Sprint("Usage:    "),
				humanBytes(stats.Bytes),
				humanBytes(stats.MaxBytes),
				usageBadge(stats.Bytes, stats.MaxBytes),
			)
			return nil
		},
	}
}

func newCacheClearCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openDiskCache(root)
			if err != nil {
				return err
			}

			if err := cache.Clear(); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Cache cleared.")
			return nil
		},
	}
}

func usageBadge(used, budget int64) string {
	if budget <= 0 {
		return "unbounded"
	}

	percent := float64(used) / float64(budget) * 100
	text := fmt.Sprintf("%.0f%%", percent)
	switch {
	case percent >= 90:
		return color.RedString(text)
	case percent >= 50:
		return color.YellowString(text)
	default:
		return color.GreenString(text)
	}
}
