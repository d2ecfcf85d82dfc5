package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/cache"
	"marquee/internal/catalog"
	"marquee/internal/enrich"
	"marquee/internal/fallback"
	"marquee/internal/logging"
	"marquee/internal/providers/imdb"
	"marquee/internal/providers/tmdb"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var outputPath string
	var force bool
	var limit int

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Resolve scraped items to canonical metadata",
		Long: `Enrich reads a scraped content collection, resolves every item that still
needs metadata against the configured providers, and writes the collection
back with provider ids, descriptions, artwork, credits, and trailers merged
in. Previously resolved fields from higher-trust sources are preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			input := strings.TrimSpace(inputPath)
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = input
			}

			col, err := catalog.Load(input)
			if err != nil {
				return fmt.Errorf("load collection: %w", err)
			}

			store, err := cache.Open(cfg)
			if err != nil {
				return fmt.Errorf("open resolution cache: %w", err)
			}
			defer store.Close()

			aggregator, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
				tmdb.WithTimeout(time.Duration(cfg.Enrichment.RequestTimeoutSeconds)*time.Second))
			if err != nil {
				return err
			}
			var suggester imdb.Suggester
			if cfg.IMDB.Enabled {
				client, err := imdb.New(cfg.IMDB.BaseURL)
				if err != nil {
					return err
				}
				suggester = client
			}
			var site enrich.PosterSource
			if cfg.Fallback.Enabled {
				site = fallback.NewSitePoster(cfg.Fallback.UserAgent)
			}

			enricher := enrich.New(cfg, logger, aggregator, suggester, cache.NewMemory(store), site)

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, runErr := enricher.Run(runCtx, col, enrich.Options{Force: force, Limit: limit})
			// Keep whatever was resolved before an interrupt; reruns resume
			// cheaply through the cache.
			if err := col.Save(output); err != nil {
				return fmt.Errorf("save collection: %w", err)
			}
			if runErr != nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCounters([]counter{
				{"Items", strconv.Itoa(summary.Total)},
				{"Enriched", strconv.Itoa(summary.Enriched)},
				{"Not Found", strconv.Itoa(summary.NotFound)},
				{"Deferred", strconv.Itoa(summary.Transient)},
				{"Skipped", strconv.Itoa(summary.Skipped)},
				{"Cache Hits", strconv.Itoa(summary.CacheHits)},
				{"TMDB IDs", strconv.Itoa(summary.ProviderIDs)},
				{"IMDb IDs", strconv.Itoa(summary.ExternalIDs)},
				{"Posters", strconv.Itoa(summary.Posters)},
				{"Duration", summary.Duration.Round(time.Millisecond).String()},
			}))
			fmt.Fprintf(out, "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Scraped collection JSON to enrich")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination path (defaults to the input path)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-resolve every item and overwrite identifier and list fields")
	cmd.Flags().IntVar(&limit, "limit", 0, "Resolve at most this many items (0 = no limit)")
	return cmd
}
