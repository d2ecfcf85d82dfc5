package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the resolution cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func (c *commandContext) withStore(fn func(*cache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := cache.Open(cfg)
	if err != nil {
		return fmt.Errorf("open resolution cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cache.Store) error {
				total, negative, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderCounters([]counter{
					{"Entries", strconv.Itoa(total)},
					{"Matches", strconv.Itoa(total - negative)},
					{"Negative", strconv.Itoa(negative)},
				}))
				fmt.Fprintf(out, "Cache database: %s\n", store.Path())
				return nil
			})
		},
	}
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached resolutions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cache.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					status := "match"
					if entry.NotFound {
						status = "not found"
					}
					year := ""
					if entry.Year > 0 {
						year = strconv.Itoa(entry.Year)
					}
					rows = append(rows, []string{
						entry.Key,
						entry.Title,
						year,
						status,
						formatEntryTime(entry.UpdatedAt.Format(time.RFC3339Nano)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderListing(
					[]column{
						{title: "Key"},
						{title: "Title"},
						{title: "Year", numeric: true},
						{title: "Status"},
						{title: "Updated"},
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 = all)")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cache.Store) error {
				if key != "" {
					if err := store.Delete(cmd.Context(), key); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed cache entry %s\n", key)
					return nil
				}
				total, _, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", total)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Delete only the entry with this key")
	return cmd
}

func formatEntryTime(value string) string {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04")
}
