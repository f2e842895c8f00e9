package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkarpov/claimscope/internal/model"
)

var (
	ingestSources []string
	ingestLimit   int
	ingestTimeout time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and store articles from configured sources",
	Long: `Run one ingestion pass. Each source yields normalized items; duplicates
(by URL or keyword-signature hash) are skipped, not re-stored.

Example:
  claimscope ingest
  claimscope ingest --source hacker_news --limit 20`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringSliceVar(&ingestSources, "source", nil, "source keys to ingest (default: all)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "items per source (default: config)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 5*time.Minute, "overall run timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	limit := ingestLimit
	if limit == 0 {
		limit = app.cfg.Ingest.LimitPerSource
	}
	if limit < 1 || limit > model.MaxLimitPerSource {
		return fmt.Errorf("--limit must be between 1 and %d", model.MaxLimitPerSource)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	result, err := app.runner.Run(ctx, ingestSources, limit)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d articles, skipped %d duplicates\n", result.Ingested, result.Skipped)

	keys := make([]string, 0, len(result.Sources))
	for key := range result.Sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		stats := result.Sources[key]
		if stats.Error != "" {
			fmt.Printf("  %-24s error: %s\n", key, stats.Error)
			continue
		}
		fmt.Printf("  %-24s fetched=%d ingested=%d skipped=%d\n", key, stats.Fetched, stats.Ingested, stats.Skipped)
	}
	return nil
}
